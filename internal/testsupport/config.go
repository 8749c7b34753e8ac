package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"intake/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The intake directories are created; options may change or remove them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.UnprocessedDir = filepath.Join(base, "unprocessed")
	cfgVal.Paths.ProcessedDir = filepath.Join(base, "processed")
	cfgVal.Paths.ErrorDir = filepath.Join(base, "error")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	if err := cfgVal.CreateLayout(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutLedger disables the run ledger.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithExtension maps an extra file extension to a processor format.
func WithExtension(ext, format string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Processing.Extensions == nil {
			b.cfg.Processing.Extensions = make(map[string]string)
		}
		b.cfg.Processing.Extensions[ext] = format
	}
}

// WithoutDir removes one of the generated directories from disk, leaving the
// config value in place.
func WithoutDir(selector func(*config.Config) string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.RemoveAll(selector(b.cfg)); err != nil {
			b.t.Fatalf("remove dir: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.UnprocessedDir)
}
