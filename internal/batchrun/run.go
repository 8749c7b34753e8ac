package batchrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"intake/internal/config"
	"intake/internal/intake"
	"intake/internal/ledger"
	"intake/internal/logging"
	"intake/internal/preflight"
	"intake/internal/processors"
	"intake/internal/services"
)

// ErrLocked reports that another run holds the run lock.
var ErrLocked = errors.New("another intake run is in progress")

// Options configures one run.
type Options struct {
	// LogLevel overrides logging.level for the console logger.
	LogLevel string
	// File restricts the run to one file, resolved against the unprocessed
	// directory when relative.
	File string
	// Processor replaces the processor built from config.
	Processor intake.Processor
	// Logger replaces the console logger built from config.
	Logger *slog.Logger
	// Observer receives every disposition after the ledger has recorded it.
	Observer func(intake.Disposition)
}

// Summary describes a completed run.
type Summary struct {
	RunID        string
	LogPath      string
	Succeeded    int
	Failed       int
	Dispositions []intake.Disposition
	Result       intake.BatchResult
	Preflight    []preflight.Result
}

// Run executes one batch run. The returned error is non-nil for lock
// contention, unusable directories, a missing single file, or cancellation;
// per-file failures only show up in the Summary.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (Summary, error) {
	if cfg == nil {
		return Summary{}, services.Wrap(services.ErrInvalidArgument, "batchrun", "start", "config is required", nil)
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Checked before EnsureDirectories creates the processed directory.
	if !dirExists(cfg.Paths.UnprocessedDir) && !dirExists(cfg.Paths.ProcessedDir) {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batchrun", "start",
			fmt.Sprintf("neither %s nor %s exists", cfg.Paths.UnprocessedDir, cfg.Paths.ProcessedDir), nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batchrun", "start", "ensure directories", err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("%w (lock held on %s)", ErrLocked, cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	started := time.Now()
	summary := Summary{
		RunID:   uuid.NewString(),
		LogPath: filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("intake-%s.log", started.UTC().Format("20060102T150405.000Z"))),
	}

	logger, err := buildLogger(cfg, opts, summary.LogPath)
	if err != nil {
		return summary, err
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger = logging.WithContext(ctx, logger)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, summary.LogPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update intake.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "intake-*.log", summary.LogPath)

	summary.Preflight = preflight.RunAll(cfg)
	if err := preflight.Err(summary.Preflight); err != nil {
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
			logging.String(logging.FieldErrorHint, "fix directory permissions and rerun"),
			logging.Error(err),
		)
		return summary, services.Wrap(services.ErrConfiguration, "batchrun", "preflight", "", err)
	}

	processor := opts.Processor
	if processor == nil {
		if processor, err = processors.FromConfig(cfg); err != nil {
			return summary, err
		}
	}

	store := openLedger(ctx, cfg, logger, summary.RunID, started)
	if store != nil {
		defer store.Close()
	}

	observer := func(d intake.Disposition) {
		summary.Dispositions = append(summary.Dispositions, d)
		if d.Status == intake.StatusSucceeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if store != nil {
			if err := store.RecordDisposition(context.WithoutCancel(ctx), summary.RunID, d); err != nil {
				logging.WarnWithContext(logger, "ledger write failed", "ledger_write_failed",
					logging.String(logging.FieldFile, d.Source),
					logging.String(logging.FieldImpact, "run history is incomplete"),
					logging.Error(err),
				)
			}
		}
		if opts.Observer != nil {
			opts.Observer(d)
		}
	}

	orchestrator, err := intake.New(
		cfg.Paths.UnprocessedDir,
		cfg.Paths.ProcessedDir,
		cfg.Paths.ErrorDir,
		intake.WithLogger(logger),
		intake.WithObserver(observer),
	)
	if err != nil {
		return summary, err
	}

	var runErr error
	if opts.File != "" {
		var result intake.Result
		result, runErr = orchestrator.ProcessOne(ctx, opts.File, processor)
		summary.Result = intake.BatchResult{}
		if runErr == nil && result.Succeeded() {
			summary.Result[result.Source] = result.Data
		}
	} else {
		summary.Result, runErr = orchestrator.ProcessAll(ctx, processor)
	}

	if store != nil {
		if err := store.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary.Succeeded, summary.Failed, runErr, time.Now()); err != nil {
			logging.WarnWithContext(logger, "ledger finish failed", "ledger_write_failed",
				logging.String(logging.FieldImpact, "run totals missing from history"),
				logging.Error(err),
			)
		}
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", time.Since(started)),
	)
	return summary, runErr
}

func buildLogger(cfg *config.Config, opts Options, logPath string) (*slog.Logger, error) {
	console := opts.Logger
	if console == nil {
		level := cfg.Logging.Level
		if opts.LogLevel != "" {
			level = opts.LogLevel
		}
		var err error
		console, err = logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	fileLogger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		return nil, fmt.Errorf("init run log: %w", err)
	}
	return logging.TeeLogger(console, fileLogger.Handler()), nil
}

// openLedger opens the run history when enabled. Failures are logged and the
// run continues without history.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string, started time.Time) *ledger.Store {
	if !cfg.Ledger.Enabled {
		return nil
	}
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		logging.WarnWithContext(logger, "ledger unavailable", "ledger_open_failed",
			logging.String("path", cfg.LedgerPath()),
			logging.String(logging.FieldImpact, "run history will not be recorded"),
			logging.Error(err),
		)
		return nil
	}

	dirs := ledger.Dirs{
		Unprocessed: cfg.Paths.UnprocessedDir,
		Processed:   cfg.Paths.ProcessedDir,
		Error:       cfg.Paths.ErrorDir,
	}
	if err := store.BeginRun(ctx, runID, dirs, started); err != nil {
		logging.WarnWithContext(logger, "ledger write failed", "ledger_write_failed",
			logging.String(logging.FieldImpact, "run history will not be recorded"),
			logging.Error(err),
		)
		_ = store.Close()
		return nil
	}

	if cfg.Logging.RetentionDays > 0 {
		cutoff := started.AddDate(0, 0, -cfg.Logging.RetentionDays)
		if removed, err := store.PruneBefore(ctx, cutoff); err != nil {
			logger.Debug("ledger prune failed", logging.Error(err))
		} else if removed > 0 {
			logger.Debug("ledger pruned", logging.Int64("runs", removed))
		}
	}
	return store
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "intake.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
