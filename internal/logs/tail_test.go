package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"intake/internal/logs"
)

const (
	debugLine = `{"ts":"2026-10-14T10:00:00Z","level":"debug","msg":"scan","run_id":"r1"}`
	infoLine  = `{"ts":"2026-10-14T10:00:01Z","level":"info","msg":"file processed","run_id":"r1","file":"a.csv"}`
	warnLine  = `{"ts":"2026-10-14T10:00:02Z","level":"warn","msg":"file failed","run_id":"r2"}`
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intake.log")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := writeLog(t, "a", "b", "c")

	lines, offset, err := logs.Last(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("unexpected offset %d", offset)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "none.log"), 10, logs.Filter{})
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestLastAppliesFilter(t *testing.T) {
	path := writeLog(t, debugLine, infoLine, warnLine, "plain text")

	lines, _, err := logs.Last(path, 10, logs.Filter{MinLevel: "info"})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected info, warn and plain lines, got %#v", lines)
	}

	lines, _, err = logs.Last(path, 10, logs.Filter{RunID: "r1"})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 3 || lines[0] != debugLine || lines[1] != infoLine {
		t.Fatalf("unexpected run filter result: %#v", lines)
	}
}

func TestFormatRendersJSONRecords(t *testing.T) {
	got := logs.Format(infoLine)
	if !strings.Contains(got, "INFO  file processed") {
		t.Fatalf("expected level and message, got %q", got)
	}
	if !strings.Contains(got, "file=a.csv run_id=r1") {
		t.Fatalf("expected sorted attributes, got %q", got)
	}
	if logs.Format("plain") != "plain" {
		t.Fatal("expected plain lines unchanged")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start")
	_, offset, err := logs.Last(path, 1, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 20*time.Millisecond, logs.Filter{}, func(line string) { got <- line })
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case line := <-got:
		if line != "later" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended line")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop")
	}
}

func TestFollowRestartsWhenPointerMoves(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "intake-1.log")
	second := filepath.Join(dir, "intake-2.log")
	pointer := filepath.Join(dir, "intake.log")
	if err := os.WriteFile(first, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(first, pointer); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	_, offset, err := logs.Last(pointer, 10, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	got := make(chan string, 8)
	go func() {
		_ = logs.Follow(ctx, pointer, offset, 20*time.Millisecond, logs.Filter{}, func(line string) { got <- line })
	}()

	appendLine(t, first, "two")
	select {
	case line := <-got:
		if line != "two" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended line")
	}

	// The new run's log is already longer than the old offset when the
	// pointer switches, so a size check alone would skip its first line.
	if err := os.WriteFile(second, []byte("fresh run starts here\nsecond line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(pointer); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(second, pointer); err != nil {
		t.Fatal(err)
	}

	select {
	case line := <-got:
		if line != "fresh run starts here" {
			t.Fatalf("expected first line of the new log, got %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not pick up the new log")
	}
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
}
