package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"intake/internal/batchrun"
	"intake/internal/config"
	"intake/internal/intake"
	"intake/internal/logging"
	"intake/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every file waiting in the unprocessed directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := executeRun(cmd, ctx, "", jsonOutput)
			if jsonOutput {
				if summary.RunID == "" {
					return err
				}
				if encErr := writeJSON(cmd, toRunJSON(summary, err)); encErr != nil {
					return encErr
				}
				return err
			}
			if summary.RunID != "" {
				printRunSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Process a single file",
		Long:  "Process a single file. Relative names resolve against the unprocessed directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := executeRun(cmd, ctx, args[0], jsonOutput)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd, toRunJSON(summary, nil)); err != nil {
					return err
				}
			} else {
				printRunSummary(cmd.OutOrStdout(), summary)
			}
			for _, d := range summary.Dispositions {
				if d.Status == intake.StatusFailed {
					return fmt.Errorf("%s failed: %s", filepath.Base(d.Source), d.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func executeRun(cmd *cobra.Command, ctx *commandContext, file string, jsonOutput bool) (batchrun.Summary, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return batchrun.Summary{}, err
	}
	level := ctx.logLevel()
	if level != "" && !logging.ValidLevel(level) {
		return batchrun.Summary{}, fmt.Errorf("invalid --log-level %q", level)
	}

	opts := batchrun.Options{LogLevel: level, File: file}

	stderr := cmd.ErrOrStderr()
	if file == "" && !jsonOutput && level == "" && shouldColorize(stderr) {
		if bar := newProgressBar(stderr, pendingFiles(cfg)); bar != nil {
			// Keep info logs from tearing the bar.
			opts.LogLevel = "warn"
			opts.Observer = func(intake.Disposition) { _ = bar.Add(1) }
			defer func() { _ = bar.Finish() }()
		}
	}

	return batchrun.Run(cmd.Context(), cfg, opts)
}

func pendingFiles(cfg *config.Config) int {
	for _, inv := range preflight.Inventory(cfg) {
		if inv.Role == "unprocessed" {
			return inv.Files
		}
	}
	return 0
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	if total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printRunSummary(out io.Writer, summary batchrun.Summary) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+summary.RunID, colorize) {
		fmt.Fprintln(out, line)
	}
	if len(summary.Dispositions) == 0 {
		fmt.Fprintln(out, "No files to process.")
	} else {
		rows := make([][]string, 0, len(summary.Dispositions))
		for _, d := range summary.Dispositions {
			rows = append(rows, dispositionRow(d))
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			headers: []string{"File", "Status", "Tables", "Rows", "Detail"},
			aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			wrap:    []int{0, 4},
		}, rows))
	}
	fmt.Fprintf(out, "%s succeeded, %s failed\n",
		humanize.Comma(int64(summary.Succeeded)),
		humanize.Comma(int64(summary.Failed)),
	)
	if summary.LogPath != "" {
		fmt.Fprintf(out, "Log: %s\n", summary.LogPath)
	}
}

func dispositionRow(d intake.Disposition) []string {
	detail := d.Reason
	if d.Status == intake.StatusSucceeded {
		detail = "-> " + d.Destination
	} else if !d.Moved {
		detail = strings.TrimSpace(detail + " (left in place)")
	}
	return []string{
		filepath.Base(d.Source),
		string(d.Status),
		fmt.Sprintf("%d", d.Tables),
		humanize.Comma(int64(d.Rows)),
		detail,
	}
}
