// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all addrbook configuration.
type Config struct {
	Book      Book      `yaml:"book"`
	Birthdays Birthdays `yaml:"birthdays"`
	Session   Session   `yaml:"session"`
	Log       Log       `yaml:"log"`
}

// Book holds persistence settings.
type Book struct {
	Path string `yaml:"path"`
}

// Birthdays holds upcoming-birthday settings.
type Birthdays struct {
	WindowDays int `yaml:"window_days"`
}

// Session holds interactive loop settings.
type Session struct {
	Plain  bool   `yaml:"plain"`  // Force the line-based session even on a TTY
	Prompt string `yaml:"prompt"` // Prompt printed before each command in plain mode
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "console" | "json"
	Output string `yaml:"output"` // "stderr" | "stdout" | file path
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Book: Book{
			Path: "addressbook.json",
		},
		Birthdays: Birthdays{
			WindowDays: 7,
		},
		Session: Session{
			Prompt: "Enter a command: ",
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Book.Path == "" {
		return errors.New("config: book.path cannot be empty")
	}
	if c.Birthdays.WindowDays < 0 {
		return fmt.Errorf("config: birthdays.window_days must be non-negative, got %d", c.Birthdays.WindowDays)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("config: log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	if c.Log.Output == "" {
		return errors.New("config: log.output cannot be empty")
	}
	return nil
}

// envOverrides lists the supported environment variables. Zero values mean
// "not set" and leave the config untouched.
type envOverrides struct {
	BookPath   string `env:"ADDRBOOK_PATH"`
	WindowDays int    `env:"ADDRBOOK_BIRTHDAY_WINDOW"`
	Plain      bool   `env:"ADDRBOOK_PLAIN"`
	LogLevel   string `env:"ADDRBOOK_LOG_LEVEL"`
	LogOutput  string `env:"ADDRBOOK_LOG_OUTPUT"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ADDRBOOK_PATH, ADDRBOOK_BIRTHDAY_WINDOW, ADDRBOOK_PLAIN,
// ADDRBOOK_LOG_LEVEL, ADDRBOOK_LOG_OUTPUT.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	if o.BookPath != "" {
		c.Book.Path = o.BookPath
	}
	if o.WindowDays != 0 {
		c.Birthdays.WindowDays = o.WindowDays
	}
	if o.Plain {
		c.Session.Plain = true
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogOutput != "" {
		c.Log.Output = o.LogOutput
	}
	return nil
}

// LoadDotenv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshaling: %w", err)
	}
	return data, nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Book      *rawBook      `yaml:"book"`
	Birthdays *rawBirthdays `yaml:"birthdays"`
	Session   *rawSession   `yaml:"session"`
	Log       *rawLog       `yaml:"log"`
}

type rawBook struct {
	Path *string `yaml:"path"`
}

type rawBirthdays struct {
	WindowDays *int `yaml:"window_days"`
}

type rawSession struct {
	Plain  *bool   `yaml:"plain"`
	Prompt *string `yaml:"prompt"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	Output *string `yaml:"output"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Book != nil && layer.Book.Path != nil {
		c.Book.Path = *layer.Book.Path
	}
	if layer.Birthdays != nil && layer.Birthdays.WindowDays != nil {
		c.Birthdays.WindowDays = *layer.Birthdays.WindowDays
	}
	if layer.Session != nil {
		if layer.Session.Plain != nil {
			c.Session.Plain = *layer.Session.Plain
		}
		if layer.Session.Prompt != nil {
			c.Session.Prompt = *layer.Session.Prompt
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
		if layer.Log.Output != nil {
			c.Log.Output = *layer.Log.Output
		}
	}
}
