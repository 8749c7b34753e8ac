package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeProcessing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key    string
		target *string
	}{
		{"paths.unprocessed_dir", &c.Paths.UnprocessedDir},
		{"paths.processed_dir", &c.Paths.ProcessedDir},
		{"paths.error_dir", &c.Paths.ErrorDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, f := range fields {
		trimmed := strings.TrimSpace(*f.target)
		if trimmed == "" {
			// Left blank for Validate to report.
			*f.target = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.target = expanded
	}
	return nil
}

func (c *Config) normalizeLedger() error {
	path := strings.TrimSpace(c.Ledger.Path)
	if path == "" {
		c.Ledger.Path = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	c.Ledger.Path = expanded
	return nil
}

func (c *Config) normalizeProcessing() {
	c.Processing.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Processing.DefaultFormat))
	if c.Processing.DefaultFormat == "" {
		c.Processing.DefaultFormat = defaultFormat
	}
	if c.Processing.CSVDelimiter == "" {
		c.Processing.CSVDelimiter = defaultCSVDelimiter
	}
	if c.Processing.CSVDelimiter == `\t` {
		c.Processing.CSVDelimiter = "\t"
	}
	c.Processing.CSVEncoding = strings.ToLower(strings.TrimSpace(c.Processing.CSVEncoding))
	if c.Processing.CSVEncoding == "" {
		c.Processing.CSVEncoding = defaultCSVEncoding
	}
	if len(c.Processing.Extensions) > 0 {
		normalized := make(map[string]string, len(c.Processing.Extensions))
		for ext, format := range c.Processing.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized[ext] = strings.ToLower(strings.TrimSpace(format))
		}
		c.Processing.Extensions = normalized
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
