package preflight

import (
	"fmt"
	"strings"

	"intake/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the readiness checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Unprocessed directory", cfg.Paths.UnprocessedDir),
		CheckDirectoryAccess("Processed directory", cfg.Paths.ProcessedDir),
		CheckDirectoryAccess("Error directory", cfg.Paths.ErrorDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	// Filesystem layout only matters once the directories are usable.
	if results[0].Passed && results[1].Passed {
		results = append(results, CheckSameFilesystem("Processed filesystem", cfg.Paths.UnprocessedDir, cfg.Paths.ProcessedDir))
	}
	if results[0].Passed && results[2].Passed {
		results = append(results, CheckSameFilesystem("Error filesystem", cfg.Paths.UnprocessedDir, cfg.Paths.ErrorDir))
	}
	return results
}

// Failures returns the failed results.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err summarizes failed results as a single error, or nil when all passed.
func Err(results []Result) error {
	failed := Failures(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
