// Package config handles configuration loading and validation for relprefix.
package config

import (
	"fmt"
	"time"

	"relprefix/internal/scanner"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidYAML     ConfigErrorType = "INVALID_YAML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		if e.Message != "" {
			return fmt.Sprintf("cannot read configuration file %s: %s", e.Path, e.Message)
		}
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidYAML:
		return fmt.Sprintf("invalid YAML in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Entry ordering.
const (
	OrderName      = "name"      // Sorted by entry name
	OrderDirectory = "directory" // As returned by the filesystem
)

// Defaults.
const (
	DefaultDirectory       = "target/bundled"
	DefaultMaxAttempts     = 5
	DefaultDelay           = 2 * time.Second
	DefaultDebounce        = 500 * time.Millisecond
	DefaultStableThreshold = time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// RetryConfig bounds the retries made for a locked entry.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	Delay       time.Duration `yaml:"delay"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Debounce        time.Duration `yaml:"debounce"`
	StableThreshold time.Duration `yaml:"stableThreshold"`
	Ignore          []string      `yaml:"ignore"`
}

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// Configuration holds all settings for relprefix.
type Configuration struct {
	Directory string        `yaml:"directory"`
	Prefix    string        `yaml:"prefix"`
	Entries   string        `yaml:"entries"` // scanner.EntriesFiles or scanner.EntriesAll
	Order     string        `yaml:"order"`
	Ignore    []string      `yaml:"ignore"`
	DryRun    bool          `yaml:"dryRun"`
	Verbose   bool          `yaml:"verbose"`
	Retry     RetryConfig   `yaml:"retry"`
	Watch     WatchConfig   `yaml:"watch"`
	Logging   LoggingConfig `yaml:"logging"`
}

// Default returns a Configuration with every default applied.
func Default() *Configuration {
	cfg := &Configuration{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// The prefix has no default.
func (c *Configuration) ApplyDefaults() {
	if c.Directory == "" {
		c.Directory = DefaultDirectory
	}
	if c.Entries == "" {
		c.Entries = scanner.EntriesFiles
	}
	if c.Order == "" {
		c.Order = OrderName
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = DefaultDelay
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Watch.StableThreshold == 0 {
		c.Watch.StableThreshold = DefaultStableThreshold
	}
	if len(c.Watch.Ignore) == 0 {
		c.Watch.Ignore = DefaultWatchIgnore()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// DefaultWatchIgnore returns the patterns for partially written files that
// watch mode leaves alone.
func DefaultWatchIgnore() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.partial",
		"*.crdownload",
		".~*",
	}
}

// ScanOptions converts the entry settings for the scanner.
func (c *Configuration) ScanOptions() scanner.ScanOptions {
	return scanner.ScanOptions{
		Entries: c.Entries,
		Sort:    c.Order != OrderDirectory,
		Ignore:  append([]string(nil), c.Ignore...),
	}
}

// Validate checks the configuration and returns the first error found.
func (c *Configuration) Validate() error {
	result := ValidateConfig(c)
	if result.Valid {
		return nil
	}
	first := result.Errors[0]
	return &ConfigError{
		Type:    ValidationError,
		Message: fmt.Sprintf("%s: %s", first.Field, first.Message),
	}
}
