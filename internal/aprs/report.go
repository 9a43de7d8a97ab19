package aprs

import (
	"fmt"
	"time"

	"github.com/golang/geo/s2"
	"github.com/lestrrat-go/strftime"
)

// Time formats used in reports and output file names
const (
	TimestampFormat = "%d%H%Mz"             // Day, hour, minute zulu
	FilenameFormat  = "aprs%m%d%Y%H%M%S.wav" // Local wall clock
)

// Data type identifier for a timestamped position with messaging
const PositionWithTimestamp = "@"

// Default symbol
const (
	DefaultSymbolTable = '/'
	DefaultSymbolCode  = '('
)

var (
	timestampPattern = mustPattern(TimestampFormat)
	filenamePattern  = mustPattern(FilenameFormat)
)

func mustPattern(p string) *strftime.Strftime {
	f, err := strftime.New(p)
	if err != nil {
		panic(fmt.Sprintf("bad strftime pattern %q: %v", p, err))
	}
	return f
}

// Report is a timestamped position report
type Report struct {
	Time        time.Time
	Position    s2.LatLng
	SymbolTable byte
	SymbolCode  byte
	Comment     string
}

// Timestamp renders t in UTC as DDHHMMz
func Timestamp(t time.Time) string {
	return timestampPattern.FormatString(t.UTC())
}

// Filename returns the output file name for a transmission made at t
func Filename(t time.Time) string {
	return filenamePattern.FormatString(t)
}

// FilenameWithPattern renders a caller supplied strftime pattern
func FilenameWithPattern(pattern string, t time.Time) (string, error) {
	name, err := strftime.Format(pattern, t)
	if err != nil {
		return "", fmt.Errorf("invalid filename pattern %q: %w", pattern, err)
	}
	return name, nil
}

// Info builds the information field, @DDHHMMz<position><symbol><comment>
func (r Report) Info() string {
	table := r.SymbolTable
	if table == 0 {
		table = DefaultSymbolTable
	}
	code := r.SymbolCode
	if code == 0 {
		code = DefaultSymbolCode
	}
	return PositionWithTimestamp + Timestamp(r.Time) + FormatPosition(r.Position, table) + string(code) + r.Comment
}
