package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"relprefix/internal/scanner"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "retry.maxAttempts")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

func (r *ValidationResult) add(issues []ConfigValidationError) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			r.Errors = append(r.Errors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
}

// ValidateConfig checks the configuration and returns all findings.
// The prefix is deliberately not checked for characters the filesystem
// rejects; the rename reports those per entry.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	result.add(ValidateEntries(cfg))
	result.add(ValidateRetry(cfg))
	result.add(ValidateWatch(cfg))
	result.add(ValidateLogging(cfg))

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateEntries checks the directory and entry selection settings.
func ValidateEntries(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if strings.TrimSpace(cfg.Directory) == "" {
		issues = append(issues, errorAt("directory", "directory cannot be empty"))
	}

	switch cfg.Entries {
	case scanner.EntriesFiles, scanner.EntriesAll:
	default:
		issues = append(issues, errorAt("entries",
			fmt.Sprintf("unknown entry policy %q (want %q or %q)", cfg.Entries, scanner.EntriesFiles, scanner.EntriesAll)))
	}

	switch cfg.Order {
	case OrderName, OrderDirectory:
	default:
		issues = append(issues, errorAt("order",
			fmt.Sprintf("unknown order %q (want %q or %q)", cfg.Order, OrderName, OrderDirectory)))
	}

	issues = append(issues, validatePatterns("ignore", cfg.Ignore)...)
	return issues
}

// ValidateRetry checks the retry bounds.
func ValidateRetry(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if cfg.Retry.MaxAttempts < 1 {
		issues = append(issues, errorAt("retry.maxAttempts", "maxAttempts must be at least 1"))
	}
	if cfg.Retry.Delay < 0 {
		issues = append(issues, errorAt("retry.delay", "delay cannot be negative"))
	}
	return issues
}

// ValidateWatch checks the watch mode settings.
func ValidateWatch(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	if cfg.Watch.Debounce < 0 {
		issues = append(issues, errorAt("watch.debounce", "debounce cannot be negative"))
	}
	if cfg.Watch.StableThreshold < 0 {
		issues = append(issues, errorAt("watch.stableThreshold", "stableThreshold cannot be negative"))
	}
	issues = append(issues, validatePatterns("watch.ignore", cfg.Watch.Ignore)...)

	if cfg.Watch.Enabled && cfg.DryRun {
		issues = append(issues, ConfigValidationError{
			Field:    "watch.enabled",
			Message:  "watch mode is skipped during a dry run",
			Severity: SeverityWarning,
		})
	}
	return issues
}

// ValidateLogging checks the logging settings.
func ValidateLogging(cfg *Configuration) []ConfigValidationError {
	var issues []ConfigValidationError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, errorAt("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level)))
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		issues = append(issues, errorAt("logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format)))
	}
	return issues
}

func validatePatterns(field string, patterns []string) []ConfigValidationError {
	var issues []ConfigValidationError
	for i, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			issues = append(issues, errorAt(formatField(field, i), fmt.Sprintf("invalid pattern %q: %v", pattern, err)))
		}
	}
	return issues
}

func errorAt(field, message string) ConfigValidationError {
	return ConfigValidationError{Field: field, Message: message, Severity: SeverityError}
}

// formatField formats a field name with an index (e.g., "ignore[0]").
func formatField(name string, index int) string {
	return fmt.Sprintf("%s[%d]", name, index)
}
