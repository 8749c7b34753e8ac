package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"intake/internal/testsupport"
)

func TestRunCommandProcessesDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "people.csv", "id,name\n1,ann\n2,bo\n")
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "broken.json", "{")

	out, _, err := runCLI(t, env, "--log-level", "error", "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "1 succeeded, 1 failed")
	requireContains(t, out, "people.csv")
	requireContains(t, out, "broken.json")

	if got := testsupport.ListFiles(t, env.cfg.Paths.UnprocessedDir); len(got) != 0 {
		t.Fatalf("expected unprocessed dir drained, got %v", got)
	}
	if got := testsupport.ListFiles(t, env.cfg.Paths.ProcessedDir); len(got) != 1 {
		t.Fatalf("expected 1 processed file, got %v", got)
	}
}

func TestRunCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "a.yaml", "- id: 1\n- id: 2\n")

	out, _, err := runCLI(t, env, "--log-level", "error", "run", "--json")
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var payload runJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.RunID == "" || payload.Succeeded != 1 || len(payload.Dispositions) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Dispositions[0].Rows != 2 {
		t.Fatalf("expected 2 rows, got %+v", payload.Dispositions[0])
	}
}

func TestRunCommandRejectsBadLogLevel(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "--log-level", "loud", "run"); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}

func TestProcessCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "good.toml", "[[items]]\nname = \"x\"\n")
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "bad.csv", "a,b\n1\n")

	out, _, err := runCLI(t, env, "--log-level", "error", "process", "good.toml")
	if err != nil {
		t.Fatalf("process good.toml: %v", err)
	}
	requireContains(t, out, "1 succeeded, 0 failed")

	_, _, err = runCLI(t, env, "--log-level", "error", "process", "bad.csv")
	if err == nil {
		t.Fatal("expected failure for malformed csv")
	}
	requireContains(t, err.Error(), "bad.csv failed")
	if got := testsupport.ListFiles(t, env.cfg.Paths.ErrorDir); len(got) != 1 {
		t.Fatalf("expected bad.csv in error dir, got %v", got)
	}

	_, _, err = runCLI(t, env, "--log-level", "error", "process", filepath.Join(env.baseDir, "missing.csv"))
	if err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "waiting.csv", "a\n1\n")

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Checks")
	requireContains(t, out, "Unprocessed directory")
	requireContains(t, out, "unprocessed")

	out, _, err = runCLI(t, env, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var payload statusJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(payload.Directories) != 3 || payload.Directories[0].Files != 1 {
		t.Fatalf("unexpected inventory %+v", payload.Directories)
	}
	if payload.Ledger != nil {
		t.Fatalf("expected no ledger before first run, got %+v", payload.Ledger)
	}
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded.")

	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "notes.md", "# Items\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	runOut, _, err := runCLI(t, env, "--log-level", "error", "run", "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var run runJSON
	if err := json.Unmarshal([]byte(runOut), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}

	out, _, err = runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, run.RunID)

	out, _, err = runCLI(t, env, "history", "--run", run.RunID)
	if err != nil {
		t.Fatalf("history --run: %v", err)
	}
	requireContains(t, out, "notes.md")
	requireContains(t, out, "1 succeeded, 0 failed")

	if _, _, err := runCLI(t, env, "history", "--run", "nope"); err == nil {
		t.Fatal("expected unknown run to fail")
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Paths.UnprocessedDir, "a.csv", "x\n1\n")

	if _, _, err := runCLI(t, env, "--log-level", "error", "run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, _, err := runCLI(t, env, "logs", "--level", "info")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "run finished")

	out, _, err = runCLI(t, env, "logs", "--raw", "-n", "1")
	if err != nil {
		t.Fatalf("logs --raw: %v", err)
	}
	requireContains(t, out, `"msg":"run finished"`)
}
