package afsk

import (
	"errors"
	"fmt"
)

// Default modem constants (Bell 202 style tones at 300 baud)
const (
	DefaultSampleRate     = 96000
	DefaultBaudRate       = 300
	DefaultMarkHz         = 1800.0
	DefaultSpaceHz        = 1600.0
	DefaultAmplitude      = 0.02 // Low synthesis level, normalized afterwards
	DefaultSyncPairs      = 32   // Number of 0,1 sync pairs ahead of the data bits
	DefaultHighPassCutoff = 350.0
)

// FullScale is the largest positive 16-bit sample value
const FullScale = 32767

// ErrInvalidParams is returned by Params.Validate
var ErrInvalidParams = errors.New("invalid modem parameters")

// Params holds the modem configuration. It is passed by value and never
// mutated by the modulator.
type Params struct {
	SampleRate     int     `yaml:"sample_rate"`
	BaudRate       int     `yaml:"baud_rate"`
	MarkHz         float64 `yaml:"mark_hz"`
	SpaceHz        float64 `yaml:"space_hz"`
	Amplitude      float64 `yaml:"amplitude"`
	SyncPairs      int     `yaml:"sync_pairs"`
	HighPassCutoff float64 `yaml:"highpass_cutoff"`
}

// DefaultParams returns the standard 300 baud, 96 kHz configuration
func DefaultParams() Params {
	return Params{
		SampleRate:     DefaultSampleRate,
		BaudRate:       DefaultBaudRate,
		MarkHz:         DefaultMarkHz,
		SpaceHz:        DefaultSpaceHz,
		Amplitude:      DefaultAmplitude,
		SyncPairs:      DefaultSyncPairs,
		HighPassCutoff: DefaultHighPassCutoff,
	}
}

// SamplesPerBit returns the number of samples spent on each bit
func (p Params) SamplesPerBit() int {
	return p.SampleRate / p.BaudRate
}

// Validate checks that the parameters describe a usable modem
func (p Params) Validate() error {
	switch {
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, p.SampleRate)
	case p.BaudRate <= 0:
		return fmt.Errorf("%w: baud rate must be positive, got %d", ErrInvalidParams, p.BaudRate)
	case p.BaudRate > p.SampleRate:
		return fmt.Errorf("%w: baud rate %d exceeds sample rate %d", ErrInvalidParams, p.BaudRate, p.SampleRate)
	case p.MarkHz <= 0 || p.SpaceHz <= 0:
		return fmt.Errorf("%w: tone frequencies must be positive", ErrInvalidParams)
	case p.MarkHz*2 >= float64(p.SampleRate) || p.SpaceHz*2 >= float64(p.SampleRate):
		return fmt.Errorf("%w: tones must be below the Nyquist frequency", ErrInvalidParams)
	case p.Amplitude <= 0 || p.Amplitude > 1:
		return fmt.Errorf("%w: amplitude must be in (0,1], got %g", ErrInvalidParams, p.Amplitude)
	case p.SyncPairs < 0:
		return fmt.Errorf("%w: sync pair count must not be negative", ErrInvalidParams)
	case p.HighPassCutoff <= 0:
		return fmt.Errorf("%w: high-pass cutoff must be positive", ErrInvalidParams)
	}
	return nil
}
