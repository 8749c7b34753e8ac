package intake

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"intake/internal/logging"
	"intake/internal/mover"
	"intake/internal/services"
)

// Orchestrator routes files between the three intake directories. It keeps no
// per-run state and is safe to reuse for sequential runs.
type Orchestrator struct {
	unprocessedDir string
	processedDir   string
	errorDir       string

	logger   *slog.Logger
	mover    Relocator
	observer func(Disposition)
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMover replaces the default mover.
func WithMover(m Relocator) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.mover = m
		}
	}
}

// WithObserver registers fn to receive one Disposition per routed file.
func WithObserver(fn func(Disposition)) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// WithClock overrides the time source used for Disposition timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New validates the directory roles and returns an Orchestrator. Directories
// are not required to exist yet.
func New(unprocessedDir, processedDir, errorDir string, opts ...Option) (*Orchestrator, error) {
	dirs := []struct {
		name  string
		value string
	}{
		{"unprocessed directory", unprocessedDir},
		{"processed directory", processedDir},
		{"error directory", errorDir},
	}
	resolved := make([]string, len(dirs))
	for i, dir := range dirs {
		trimmed := strings.TrimSpace(dir.value)
		if trimmed == "" {
			return nil, services.Wrap(services.ErrInvalidArgument, "intake", "configure", dir.name+" is required", nil)
		}
		abs, err := filepath.Abs(trimmed)
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidArgument, "intake", "configure", fmt.Sprintf("resolve %s", dir.name), err)
		}
		resolved[i] = abs
	}

	o := &Orchestrator{
		unprocessedDir: resolved[0],
		processedDir:   resolved[1],
		errorDir:       resolved[2],
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.mover == nil {
		o.mover = mover.New(o.logger)
	}
	o.logger = logging.NewComponentLogger(o.logger, "intake")
	return o, nil
}

// UnprocessedDir returns the absolute unprocessed directory.
func (o *Orchestrator) UnprocessedDir() string { return o.unprocessedDir }

// ProcessedDir returns the absolute processed directory.
func (o *Orchestrator) ProcessedDir() string { return o.processedDir }

// ErrorDir returns the absolute error directory.
func (o *Orchestrator) ErrorDir() string { return o.errorDir }

func (o *Orchestrator) notify(r Result) {
	if o.observer == nil {
		return
	}
	o.observer(newDisposition(r, o.now().UTC()))
}
