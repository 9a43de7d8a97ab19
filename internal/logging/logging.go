package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects the log level and output format
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns info level text logging
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// Validate checks the level and format names
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Format)
	}
	return nil
}

// New builds a logger writing to stderr. Verbose forces debug level.
func New(cfg Config, verbose bool) (*logrus.Logger, error) {
	return NewWithOutput(cfg, verbose, os.Stderr)
}

// NewWithOutput is New with an explicit destination
func NewWithOutput(cfg Config, verbose bool, out io.Writer) (*logrus.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)

	level, _ := logrus.ParseLevel(cfg.Level)
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}
