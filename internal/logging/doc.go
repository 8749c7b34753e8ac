// Package logging assembles structured slog loggers and formatting helpers used
// across the intake pipeline.
//
// It owns the configurable console/JSON handlers, adds a FATAL level above
// slog's ERROR for relocation failures that strand a file, and exposes
// context-aware helpers so orchestrator code can tag log lines with the batch
// run ID and the file being handled. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
