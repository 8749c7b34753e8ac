package intake

import (
	"context"
	"os"
	"path/filepath"

	"intake/internal/logging"
	"intake/internal/services"
)

// ProcessAll processes every file present in the unprocessed directory when
// the call starts, in name order, and returns the payloads of the successes.
// Files added during the run wait for the next one. A cancelled ctx stops the
// run before the next file; the successes so far are returned with ctx.Err().
func (o *Orchestrator) ProcessAll(ctx context.Context, p Processor) (BatchResult, error) {
	if p == nil {
		return nil, services.Wrap(services.ErrInvalidArgument, "intake", "process all", "processor is required", nil)
	}
	if !dirExists(o.unprocessedDir) && !dirExists(o.processedDir) {
		return nil, services.Wrap(services.ErrConfiguration, "intake", "process all", "neither the unprocessed nor the processed directory exists", nil)
	}

	files, err := o.listFiles()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "intake", "process all", "list unprocessed directory", err)
	}

	logger := logging.WithContext(ctx, o.logger)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String("unprocessed_dir", o.unprocessedDir),
		logging.Int("files", len(files)),
	)

	results := make(BatchResult)
	failed, skipped := 0, 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "batch cancelled", "batch_cancelled",
				logging.Int("processed", len(results)+failed),
				logging.Int("remaining", len(files)-len(results)-failed-skipped),
				logging.String(logging.FieldImpact, "remaining files stay in the unprocessed directory"),
				logging.Error(err),
			)
			return results, err
		}

		result, err := o.ProcessOne(ctx, path, p)
		if err != nil {
			skipped++
			logging.WarnWithContext(logger, "file skipped", "file_skipped",
				logging.String(logging.FieldFile, path),
				logging.String(logging.FieldErrorHint, "file changed while the batch was running"),
				logging.String(logging.FieldImpact, "file was not processed"),
				logging.Error(err),
			)
			continue
		}
		if result.Succeeded() {
			results[result.Source] = result.Data
		} else {
			failed++
		}
	}

	logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", len(results)),
		logging.Int("failed", failed),
		logging.Int("skipped", skipped),
	)
	return results, nil
}

// listFiles returns the absolute paths of the non-directory entries of the
// unprocessed directory, sorted by name. Symlinks count when they resolve to
// a file.
func (o *Orchestrator) listFiles() ([]string, error) {
	entries, err := os.ReadDir(o.unprocessedDir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(o.unprocessedDir, entry.Name())
		switch {
		case entry.Type().IsRegular():
		case entry.Type()&os.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		default:
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
