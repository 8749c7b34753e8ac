// Package mover relocates files into a destination directory without
// overwriting anything already there.
//
// The final name is always the original base name plus a disambiguating
// suffix. Candidates are tried in order and the first free one wins:
//
//	<name>.2006-01-02T150405       local time, second precision
//	<name>.2006-01-02T150405.000   local time, millisecond precision
//	<name>.<32 hex uuid>
//
// Only the last tier is effectively unique; the timestamp tiers are a
// readable best effort.
package mover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"intake/internal/fileutil"
	"intake/internal/logging"
)

const (
	secondLayout      = "2006-01-02T150405"
	millisecondLayout = "2006-01-02T150405.000"
)

// Mover relocates files. The zero value is not usable; call New.
type Mover struct {
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	relocate func(src, dst string) error
}

// Option configures a Mover.
type Option func(*Mover)

// WithClock overrides the time source used for timestamp suffixes.
func WithClock(now func() time.Time) Option {
	return func(m *Mover) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDSource overrides the generator used for the final suffix tier.
func WithIDSource(newID func() string) Option {
	return func(m *Mover) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// WithRelocator overrides the function that performs the actual move.
func WithRelocator(fn func(src, dst string) error) Option {
	return func(m *Mover) {
		if fn != nil {
			m.relocate = fn
		}
	}
}

// New constructs a Mover. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Mover {
	m := &Mover{
		logger:   logging.NewComponentLogger(logger, "mover"),
		now:      time.Now,
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		relocate: fileutil.Relocate,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Move relocates sourceFile into destinationDir and returns the final path.
// It never fails for a same-name collision. Any I/O failure is logged at
// FATAL severity and reported as false; sourceFile stays where it was.
func (m *Mover) Move(ctx context.Context, sourceFile, destinationDir string) (string, bool) {
	logger := logging.WithContext(ctx, m.logger)

	target, err := m.place(sourceFile, destinationDir)
	if err != nil {
		logging.Fatal(logger, "file relocation failed",
			logging.String(logging.FieldEventType, "relocation_failed"),
			logging.String("source", sourceFile),
			logging.String("destination_dir", destinationDir),
			logging.String(logging.FieldErrorHint, "check permissions and free space on the destination"),
			logging.Error(err),
		)
		return "", false
	}

	logger.Debug("file relocated",
		logging.String("source", sourceFile),
		logging.String(logging.FieldDestination, target),
	)
	return target, true
}

// place tries each candidate name in turn. A candidate that exists, or that
// appears between the check and the move, passes to the next tier.
func (m *Mover) place(sourceFile, destinationDir string) (string, error) {
	base := filepath.Base(sourceFile)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid source path %q", sourceFile)
	}

	suffixes := []func() string{
		func() string { return m.now().Format(secondLayout) },
		func() string { return m.now().Format(millisecondLayout) },
		m.newID,
	}
	var lastErr error
	for _, suffix := range suffixes {
		candidate := filepath.Join(destinationDir, base+"."+suffix())
		free, err := available(candidate)
		if err != nil {
			return "", err
		}
		if !free {
			lastErr = fmt.Errorf("%s: %w", candidate, fs.ErrExist)
			continue
		}
		err = m.relocate(sourceFile, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("no free name for %s: %w", base, lastErr)
}

func available(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("stat candidate %q: %w", path, err)
}
