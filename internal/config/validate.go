package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

// Formats lists the processor names accepted by processing.default_format and
// processing.extensions. "auto" routes by file extension.
var Formats = []string{"auto", "csv", "tsv", "json", "yaml", "toml", "markdown"}

// Encodings lists the accepted processing.csv_encoding values.
var Encodings = []string{"utf-8", "latin1", "iso-8859-1", "windows-1252"}

var logLevels = []string{"debug", "info", "warn", "warning", "error", "fatal"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	roles := []struct {
		key   string
		value string
	}{
		{"paths.unprocessed_dir", c.Paths.UnprocessedDir},
		{"paths.processed_dir", c.Paths.ProcessedDir},
		{"paths.error_dir", c.Paths.ErrorDir},
	}
	seen := make(map[string]string, len(roles))
	for _, role := range roles {
		if strings.TrimSpace(role.value) == "" {
			return fmt.Errorf("%s must be set", role.key)
		}
		clean := filepath.Clean(role.value)
		if other, ok := seen[clean]; ok {
			return fmt.Errorf("%s must differ from %s (both %q)", role.key, other, clean)
		}
		seen[clean] = role.key
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if !slices.Contains(Formats, c.Processing.DefaultFormat) {
		return fmt.Errorf("processing.default_format: unsupported value %q (want one of %s)", c.Processing.DefaultFormat, strings.Join(Formats, ", "))
	}
	for ext, format := range c.Processing.Extensions {
		if format == "auto" || !slices.Contains(Formats, format) {
			return fmt.Errorf("processing.extensions[%q]: unsupported format %q", ext, format)
		}
	}
	if utf8.RuneCountInString(c.Processing.CSVDelimiter) != 1 {
		return fmt.Errorf("processing.csv_delimiter must be a single character, got %q", c.Processing.CSVDelimiter)
	}
	if r, _ := utf8.DecodeRuneInString(c.Processing.CSVDelimiter); r == '"' || r == '\r' || r == '\n' {
		return fmt.Errorf("processing.csv_delimiter %q is not allowed", c.Processing.CSVDelimiter)
	}
	if !slices.Contains(Encodings, c.Processing.CSVEncoding) {
		return fmt.Errorf("processing.csv_encoding: unsupported value %q (want one of %s)", c.Processing.CSVEncoding, strings.Join(Encodings, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// CSVDelimiterRune returns processing.csv_delimiter as a rune.
func (c *Config) CSVDelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Processing.CSVDelimiter)
	return r
}
