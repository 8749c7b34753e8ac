package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"intake/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, or the dispositions of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return fmt.Errorf("ledger is disabled (set ledger.enabled = true)")
			}
			store, err := openExistingLedger(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				if jsonOutput {
					return writeJSON(cmd, []ledger.Run{})
				}
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			defer store.Close()

			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", runID)
				}
				entries, err := store.ListDispositions(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, struct {
						Run          *ledger.Run    `json:"run"`
						Dispositions []ledger.Entry `json:"dispositions"`
					}{run, entries})
				}
				printRunDetail(cmd, run, entries)
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []ledger.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					humanize.Time(run.StartedAt),
					runDuration(run),
					fmt.Sprintf("%d", run.Succeeded),
					fmt.Sprintf("%d", run.Failed),
					run.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Run", "Started", "Duration", "OK", "Failed", "Error"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				wrap:    []int{5},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the dispositions recorded for one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runDuration(run ledger.Run) string {
	if !run.Finished() {
		return "running"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

func printRunDetail(cmd *cobra.Command, run *ledger.Run, entries []ledger.Entry) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format("2006-01-02 15:04:05"), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, runDuration(*run), colorize))
	kind := statusOK
	if run.Failed > 0 {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Files", kind, fmt.Sprintf("%d succeeded, %d failed", run.Succeeded, run.Failed), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}
	if len(entries) == 0 {
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Reason
		if e.Destination != "" && e.Status == "succeeded" {
			detail = "-> " + e.Destination
		}
		rows = append(rows, []string{
			filepath.Base(e.Source),
			e.Status,
			e.Kind,
			fmt.Sprintf("%d", e.Tables),
			humanize.Comma(int64(e.Rows)),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		headers: []string{"File", "Status", "Kind", "Tables", "Rows", "Detail"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		wrap:    []int{0, 5},
	}, rows))
}
