package intake

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"intake/internal/dataset"
	"intake/internal/logging"
	"intake/internal/services"
)

// ProcessOne runs p against filename and routes the file. A relative filename
// is resolved against the unprocessed directory; an absolute one is used as
// is. The returned error is non-nil only for invalid arguments or a missing
// file; every processing or relocation problem is reported through Result.
func (o *Orchestrator) ProcessOne(ctx context.Context, filename string, p Processor) (Result, error) {
	if strings.TrimSpace(filename) == "" {
		return Result{}, services.Wrap(services.ErrInvalidArgument, "intake", "process file", "filename is required", nil)
	}
	if p == nil {
		return Result{}, services.Wrap(services.ErrInvalidArgument, "intake", "process file", "processor is required", nil)
	}

	path, err := o.resolve(filename)
	if err != nil {
		return Result{}, err
	}

	ctx = services.WithFile(ctx, path)
	logger := logging.WithContext(ctx, o.logger)
	logger.Debug("processing file", logging.String(logging.FieldEventType, "file_start"))

	set, procErr := invoke(ctx, p, path)
	reason := classify(set, procErr)
	if reason == nil {
		return o.routeSuccess(services.WithStage(ctx, "route"), path, set), nil
	}
	return o.routeFailure(services.WithStage(ctx, "route"), path, reason), nil
}

func (o *Orchestrator) resolve(filename string) (string, error) {
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.unprocessedDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrInvalidArgument, "intake", "resolve file", filename, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrFileNotFound, "intake", "resolve file", abs+" does not exist", fs.ErrNotExist)
		}
		return "", services.Wrap(services.ErrFileNotFound, "intake", "resolve file", "stat "+abs, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrFileNotFound, "intake", "resolve file", abs+" is a directory", fs.ErrNotExist)
	}
	return abs, nil
}

// invoke calls the processor and converts a panic into an error.
func invoke(ctx context.Context, p Processor, path string) (set *dataset.Set, err error) {
	defer func() {
		if r := recover(); r != nil {
			set = nil
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()
	return p.ProcessFile(services.WithStage(ctx, "process"), path)
}

// classify returns nil when the payload is usable, or the failure reason.
// A processor error wins over any payload returned alongside it.
func classify(set *dataset.Set, err error) error {
	switch {
	case err != nil:
		return err
	case set == nil:
		return services.Wrap(services.ErrNoData, "process", "classify", "processor returned no data", nil)
	case !set.Populated():
		return services.Wrap(services.ErrNoData, "process", "classify", "processor returned no tables", nil)
	default:
		return nil
	}
}

func (o *Orchestrator) routeSuccess(ctx context.Context, path string, set *dataset.Set) Result {
	logger := logging.WithContext(ctx, o.logger)

	destination, ok := o.mover.Move(ctx, path, o.processedDir)
	if !ok {
		reason := services.Wrap(services.ErrRelocation, "route", "move to processed", "file left in unprocessed directory", nil)
		attrs := append(logging.OutcomeAttrs(string(StatusFailed), "", len(set.Tables), set.TotalRows()),
			logging.String(logging.FieldErrorHint, "fix the processed directory and rerun; the file is retried next run"),
			logging.Error(reason),
		)
		logging.ErrorWithContext(logger, "unable to process file", "file_stranded", attrs...)
		result := Result{Status: StatusFailed, Source: path, Err: reason}
		o.notify(result)
		return result
	}

	set.Name = path
	logger.Debug("processing succeeded", logging.String(logging.FieldDestination, destination))
	attrs := append(logging.OutcomeAttrs(string(StatusSucceeded), destination, len(set.Tables), set.TotalRows()),
		logging.String(logging.FieldEventType, "file_processed"),
	)
	logger.Info("file processed", logging.Args(attrs...)...)
	result := Result{Status: StatusSucceeded, Source: path, Destination: destination, Data: set}
	o.notify(result)
	return result
}

func (o *Orchestrator) routeFailure(ctx context.Context, path string, reason error) Result {
	logger := logging.WithContext(ctx, o.logger)

	destination, ok := o.mover.Move(ctx, path, o.errorDir)
	attrs := logging.OutcomeAttrs(string(StatusFailed), destination, 0, 0)
	if !ok {
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "fix the error directory; the file is retried next run"),
			logging.String("processing_error", reason.Error()),
		)
		logging.ErrorWithContext(logger, "unable to process file", "file_stranded", attrs...)
	} else {
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "inspect the file in the error directory"),
			logging.Error(reason),
		)
		logging.ErrorWithContext(logger, "unable to process file", "file_failed", attrs...)
	}
	result := Result{Status: StatusFailed, Source: path, Destination: destination, Err: reason}
	o.notify(result)
	return result
}
