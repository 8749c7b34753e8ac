// Package logs reads intake run logs for the CLI.
//
// Run logs are JSON lines written by the per-run file handler. This package
// tails them with bounded memory, follows them as a run appends, and filters
// records by level or run id. Lines that are not JSON pass through untouched.
package logs
