package journal

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	filePrefix = "aprswav_"
	fileSuffix = ".csv"
	dateLayout = "2006-01-02"
)

// Header is the first row of every journal file
var Header = []string{"utime", "isotime", "source", "destination", "path", "info", "file", "samples"}

// Entry describes one completed transmission
type Entry struct {
	Time        time.Time
	Source      string
	Destination string
	Path        []string
	Info        string
	File        string
	Samples     int
}

// Journal appends transmission records to daily CSV files. When the day
// changes the previous file is gzip-compressed in the background.
type Journal struct {
	dir         string
	useUTC      bool
	logger      *logrus.Logger
	now         func() time.Time
	currentFile *os.File
	currentDate string
	mutex       sync.Mutex
	compressWG  sync.WaitGroup
}

// New creates the journal directory and opens today's file
func New(dir string, useUTC bool, logger *logrus.Logger) (*Journal, error) {
	return newWithClock(dir, useUTC, logger, time.Now)
}

func newWithClock(dir string, useUTC bool, logger *logrus.Logger, now func() time.Time) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	j := &Journal{
		dir:    dir,
		useUTC: useUTC,
		logger: logger,
		now:    now,
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()
	if err := j.rotate(j.date(j.clock())); err != nil {
		return nil, fmt.Errorf("failed to initialize journal file: %w", err)
	}

	return j, nil
}

func (j *Journal) clock() time.Time {
	if j.useUTC {
		return j.now().UTC()
	}
	return j.now()
}

func (j *Journal) date(t time.Time) string {
	return t.Format(dateLayout)
}

func (j *Journal) pathFor(date string) string {
	return filepath.Join(j.dir, filePrefix+date+fileSuffix)
}

// Start checks for a date change once a minute until ctx is done, so an
// idle service still compresses yesterday's file
func (j *Journal) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.checkRotation()
		}
	}
}

func (j *Journal) checkRotation() {
	today := j.date(j.clock())

	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.currentDate != today {
		if err := j.rotate(today); err != nil {
			j.logger.WithError(err).Error("Failed to rotate journal file")
		}
	}
}

// rotate closes the current file and opens the one for date. Caller holds the mutex.
func (j *Journal) rotate(date string) error {
	if j.currentFile != nil {
		oldDate := j.currentDate
		if err := j.currentFile.Close(); err != nil {
			j.logger.WithError(err).Error("Failed to close old journal file")
		}
		j.currentFile = nil

		j.logger.WithFields(logrus.Fields{
			"old_date": oldDate,
			"new_date": date,
		}).Info("Rotating journal file")

		j.compressWG.Add(1)
		go func() {
			defer j.compressWG.Done()
			if err := compress(j.pathFor(oldDate)); err != nil {
				j.logger.WithError(err).WithField("date", oldDate).Error("Failed to compress journal file")
			}
		}()
	}

	path := j.pathFor(date)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat journal file %s: %w", path, err)
	}
	if info.Size() == 0 {
		w := csv.NewWriter(file)
		if err := w.Write(Header); err != nil {
			file.Close()
			return fmt.Errorf("failed to write journal header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return fmt.Errorf("failed to write journal header: %w", err)
		}
	}

	j.currentFile = file
	j.currentDate = date
	j.logger.WithField("file", path).Debug("Opened journal file")

	return nil
}

// Record appends one entry, rotating first if the date has changed
func (j *Journal) Record(e Entry) error {
	t := e.Time
	if t.IsZero() {
		t = j.clock()
	}
	if j.useUTC {
		t = t.UTC()
	}
	today := j.date(j.clock())

	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.currentFile == nil {
		return fmt.Errorf("journal is closed")
	}
	if j.currentDate != today {
		if err := j.rotate(today); err != nil {
			return err
		}
	}

	w := csv.NewWriter(j.currentFile)
	row := []string{
		strconv.FormatInt(t.Unix(), 10),
		t.Format(time.RFC3339),
		e.Source,
		e.Destination,
		strings.Join(e.Path, ","),
		e.Info,
		e.File,
		strconv.Itoa(e.Samples),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// CurrentFile returns the path of the file being appended to
func (j *Journal) CurrentFile() string {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.currentDate == "" {
		return ""
	}
	return j.pathFor(j.currentDate)
}

// Files lists all journal files, plain and compressed
func (j *Journal) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(j.dir, filePrefix+"*"+fileSuffix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	return files, nil
}

// Cleanup removes journal files not modified within maxDays, except the current one
func (j *Journal) Cleanup(maxDays int) (int, error) {
	if maxDays <= 0 {
		return 0, fmt.Errorf("maxDays must be positive")
	}

	files, err := j.Files()
	if err != nil {
		return 0, err
	}

	cutoff := j.clock().AddDate(0, 0, -maxDays)
	current := j.CurrentFile()

	removed := 0
	for _, file := range files {
		if file == current {
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			j.logger.WithError(err).WithField("file", file).Warn("Failed to stat journal file")
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				j.logger.WithError(err).WithField("file", file).Error("Failed to remove old journal file")
				continue
			}
			removed++
		}
	}

	j.logger.WithField("count", removed).Info("Cleaned up old journal files")
	return removed, nil
}

// Close closes the current file and waits for pending compression
func (j *Journal) Close() error {
	j.mutex.Lock()
	var err error
	if j.currentFile != nil {
		err = j.currentFile.Close()
		j.currentFile = nil
	}
	j.mutex.Unlock()

	j.compressWG.Wait()
	return err
}

// compress gzips path to path.gz and removes path
func compress(path string) error {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	gzPath := path + ".gz"
	dst, err := os.Create(gzPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", gzPath, err)
	}
	defer dst.Close()

	gz := gzip.NewWriter(dst)
	gz.Name = filepath.Base(path)
	gz.ModTime = time.Now()

	if _, err := io.Copy(gz, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", gzPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", gzPath, err)
	}
	src.Close()

	return os.Remove(path)
}
