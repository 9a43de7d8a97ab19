package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"

	"aprswav/internal/afsk"
	"aprswav/internal/aprs"
	"aprswav/internal/ax25"
	"aprswav/internal/journal"
	"aprswav/internal/logging"
	"aprswav/internal/metrics"
	"aprswav/internal/wavfile"
)

// Application builds transmissions and writes them to WAV files
type Application struct {
	config    Config
	logger    *logrus.Logger
	modulator *afsk.Modulator
	journal   *journal.Journal
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option customizes an Application
type Option func(*Application)

// WithLogger replaces the logger built from the configuration
func WithLogger(logger *logrus.Logger) Option {
	return func(app *Application) { app.logger = logger }
}

// WithClock replaces time.Now, for reproducible file names and timestamps
func WithClock(now func() time.Time) Option {
	return func(app *Application) { app.now = now }
}

// WithMetrics attaches Prometheus metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(app *Application) { app.metrics = m }
}

// NewApplication creates a new application instance
func NewApplication(config Config, opts ...Option) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		logger, err := logging.New(config.Logging, config.Verbose)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		app.logger = logger
	}

	modulator, err := afsk.NewModulator(config.Modem, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create modulator: %w", err)
	}
	app.modulator = modulator

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if config.JournalDir != "" {
		app.journal, err = journal.New(config.JournalDir, config.JournalUTC, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize journal: %w", err)
		}
	}

	return app, nil
}

// Logger returns the application logger
func (app *Application) Logger() *logrus.Logger {
	return app.logger
}

// Config returns the application configuration
func (app *Application) Config() Config {
	return app.config
}

// Journal returns the transmission journal, nil when disabled
func (app *Application) Journal() *journal.Journal {
	return app.journal
}

// PositionInfo builds a timestamped position report info field for now
func (app *Application) PositionInfo(pos s2.LatLng, symbolTable, symbolCode byte, comment string) string {
	return aprs.Report{
		Time:        app.now(),
		Position:    pos,
		SymbolTable: symbolTable,
		SymbolCode:  symbolCode,
		Comment:     comment,
	}.Info()
}

// Encode builds the framed transmission and returns its filtered samples
func (app *Application) Encode(source, destination string, path []string, info string) ([]byte, []int, error) {
	packet := ax25.Packet{
		Source:      source,
		Destination: destination,
		Path:        path,
		Info:        info,
	}

	frame, err := ax25.BuildTransmission(packet, app.config.PreambleLength)
	if err != nil {
		return nil, nil, err
	}

	return frame, app.modulator.Encode(frame), nil
}

// EncodeAndWrite encodes one report and writes it to a new WAV file in
// the output directory, returning the file's path. Nothing is written
// unless the whole transmission was built successfully.
func (app *Application) EncodeAndWrite(source, destination string, path []string, info string) (filename string, err error) {
	start := time.Now()
	var frameLen, sampleCount int
	defer func() {
		app.metrics.RecordEncode(err, time.Since(start).Seconds(), frameLen, sampleCount)
	}()

	log := app.logger.WithFields(logrus.Fields{
		"source":      source,
		"destination": destination,
		"path":        path,
	})

	frame, samples, err := app.Encode(source, destination, path, info)
	if err != nil {
		log.WithError(err).Warn("Failed to encode transmission")
		return "", err
	}
	frameLen, sampleCount = len(frame), len(samples)

	stamp := app.now()
	filename = filepath.Join(app.config.OutputDir, aprs.Filename(stamp))
	if err := wavfile.WriteFile(filename, samples, app.config.Modem.SampleRate); err != nil {
		log.WithError(err).Error("Failed to write WAV file")
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}

	log.WithFields(logrus.Fields{
		"file":        filename,
		"frame_bytes": len(frame),
		"samples":     len(samples),
	}).Info("Wrote transmission")

	if app.journal != nil {
		entry := journal.Entry{
			Time:        stamp,
			Source:      source,
			Destination: destination,
			Path:        path,
			Info:        info,
			File:        filename,
			Samples:     len(samples),
		}
		if jerr := app.journal.Record(entry); jerr != nil {
			log.WithError(jerr).Warn("Failed to record transmission in journal")
		}
	}

	return filename, nil
}

// Close releases the journal
func (app *Application) Close() error {
	if app.journal != nil {
		return app.journal.Close()
	}
	return nil
}
