package batchrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"intake/internal/batchrun"
	"intake/internal/config"
	"intake/internal/dataset"
	"intake/internal/intake"
	"intake/internal/logging"
	"intake/internal/services"
	"intake/internal/testsupport"
)

func TestRunProcessesDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "a.csv", "id,name\n1,ann\n")
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "b.json", "{not json")
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "c.png", "binary")

	var observed []intake.Disposition
	summary, err := batchrun.Run(context.Background(), cfg, batchrun.Options{
		Logger:   logging.NewNop(),
		Observer: func(d intake.Disposition) { observed = append(observed, d) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 2 {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if len(summary.Result) != 1 || len(observed) != 3 {
		t.Fatalf("expected 1 result and 3 observed dispositions, got %d and %d", len(summary.Result), len(observed))
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if _, err := os.Stat(summary.LogPath); err != nil {
		t.Fatalf("expected run log file: %v", err)
	}
	if got := testsupport.ListFiles(t, cfg.Paths.ErrorDir); len(got) != 2 {
		t.Fatalf("expected 2 error files, got %v", got)
	}

	store := testsupport.MustOpenLedger(t, cfg)
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected ledger run, got %v %v", run, err)
	}
	if !run.Finished() || run.Succeeded != 1 || run.Failed != 2 {
		t.Fatalf("unexpected ledger run %+v", run)
	}
	entries, err := store.ListDispositions(context.Background(), summary.RunID)
	if err != nil || len(entries) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d (%v)", len(entries), err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected lock released after run, ok=%v err=%v", ok, err)
	}
	_ = lock.Unlock()
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, err = batchrun.Run(context.Background(), cfg, batchrun.Options{Logger: logging.NewNop()})
	if !errors.Is(err, batchrun.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunSingleFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger())
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "one.csv", "a\n1\n")
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "two.csv", "a\n2\n")

	summary, err := batchrun.Run(context.Background(), cfg, batchrun.Options{
		Logger: logging.NewNop(),
		File:   "one.csv",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := filepath.Join(cfg.Paths.UnprocessedDir, "one.csv")
	if _, ok := summary.Result[want]; !ok || len(summary.Result) != 1 {
		t.Fatalf("expected only %s in result, got %v", want, summary.Result.Paths())
	}
	if got := testsupport.ListFiles(t, cfg.Paths.UnprocessedDir); len(got) != 1 || got[0] != "two.csv" {
		t.Fatalf("expected two.csv untouched, got %v", got)
	}
	if _, err := os.Stat(cfg.LedgerPath()); !os.IsNotExist(err) {
		t.Fatalf("ledger must not be created when disabled, stat err=%v", err)
	}
}

func TestRunSingleFileMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	summary, err := batchrun.Run(context.Background(), cfg, batchrun.Options{
		Logger: logging.NewNop(),
		File:   "ghost.csv",
	})
	if !errors.Is(err, services.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	store := testsupport.MustOpenLedger(t, cfg)
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected ledger run, got %v %v", run, err)
	}
	if run.ErrorMessage == "" {
		t.Fatal("expected run error to be recorded")
	}
}

func TestRunUsesProvidedProcessor(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger())
	testsupport.WriteText(t, cfg.Paths.UnprocessedDir, "anything.bin", "x")
	calls := 0
	proc := intake.ProcessorFunc(func(context.Context, string) (*dataset.Set, error) {
		calls++
		return &dataset.Set{Tables: []dataset.Table{{Name: "t"}}}, nil
	})

	summary, err := batchrun.Run(context.Background(), cfg, batchrun.Options{
		Logger:    logging.NewNop(),
		Processor: proc,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 || summary.Succeeded != 1 {
		t.Fatalf("expected custom processor to handle the file, calls=%d summary=%+v", calls, summary)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := batchrun.Run(context.Background(), nil, batchrun.Options{}); !errors.Is(err, services.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRunMissingRootsIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithoutDir(func(c *config.Config) string { return c.Paths.UnprocessedDir }),
		testsupport.WithoutDir(func(c *config.Config) string { return c.Paths.ProcessedDir }),
	)

	_, err := batchrun.Run(context.Background(), cfg, batchrun.Options{Logger: logging.NewNop()})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	for _, dir := range []string{cfg.Paths.UnprocessedDir, cfg.Paths.ProcessedDir} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Fatalf("run must not create %s, stat err=%v", dir, err)
		}
	}
}

func TestRunMissingUnprocessedDirIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger(),
		testsupport.WithoutDir(func(c *config.Config) string { return c.Paths.UnprocessedDir }),
	)

	_, err := batchrun.Run(context.Background(), cfg, batchrun.Options{Logger: logging.NewNop()})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := os.Stat(cfg.Paths.UnprocessedDir); !os.IsNotExist(err) {
		t.Fatalf("run must not create the unprocessed directory, stat err=%v", err)
	}
}
