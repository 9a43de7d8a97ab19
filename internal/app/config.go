package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aprswav/internal/afsk"
	"aprswav/internal/ax25"
	"aprswav/internal/logging"
)

// Default configuration constants
const (
	DefaultSource      = "IOSPY1"
	DefaultDestination = "YourCall"
	DefaultOutputDir   = "."
	DefaultHTTPAddress = "127.0.0.1"
	DefaultHTTPPort    = 8073
)

// DefaultPath is the digipeater path used when none is configured
var DefaultPath = []string{"WIDE1", "WIDE2"}

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	Source         string         `yaml:"source"`
	Destination    string         `yaml:"destination"`
	Path           []string       `yaml:"path"`
	PreambleLength int            `yaml:"preamble_length"`
	OutputDir      string         `yaml:"output_dir"`
	JournalDir     string         `yaml:"journal_dir"` // Empty disables the journal
	JournalUTC     bool           `yaml:"journal_utc"`
	Modem          afsk.Params    `yaml:"modem"`
	Logging        logging.Config `yaml:"logging"`
	HTTP           HTTPConfig     `yaml:"http"`
	Verbose        bool           `yaml:"-"`
	ShowVersion    bool           `yaml:"-"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		Source:         DefaultSource,
		Destination:    DefaultDestination,
		Path:           append([]string(nil), DefaultPath...),
		PreambleLength: ax25.DefaultPreambleLength,
		OutputDir:      DefaultOutputDir,
		JournalUTC:     true,
		Modem:          afsk.DefaultParams(),
		Logging:        logging.DefaultConfig(),
		HTTP: HTTPConfig{
			Address: DefaultHTTPAddress,
			Port:    DefaultHTTPPort,
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the configuration
func (c Config) Validate() error {
	if c.PreambleLength < 0 {
		return fmt.Errorf("%w: preamble length must not be negative, got %d", ErrInvalidConfig, c.PreambleLength)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory must be set", ErrInvalidConfig)
	}
	if err := c.Modem.Validate(); err != nil {
		return fmt.Errorf("%w: modem: %w", ErrInvalidConfig, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: logging: %w", ErrInvalidConfig, err)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http port %d out of range", ErrInvalidConfig, c.HTTP.Port)
	}
	return nil
}
