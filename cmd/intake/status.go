package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"intake/internal/config"
	"intake/internal/ledger"
	"intake/internal/preflight"
)

type statusJSON struct {
	ConfigPath  string                   `json:"config_path"`
	Checks      []checkJSON              `json:"checks"`
	Directories []preflight.DirInventory `json:"directories"`
	Ledger      *ledgerStatusJSON        `json:"ledger,omitempty"`
}

type checkJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type ledgerStatusJSON struct {
	Path   string         `json:"path"`
	Counts map[string]int `json:"counts"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show directory readiness and pending files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cfg)
			inventory := preflight.Inventory(cfg)
			counts, err := ledgerCounts(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if jsonOutput {
				payload := statusJSON{ConfigPath: ctx.configPath, Directories: inventory}
				for _, c := range checks {
					payload.Checks = append(payload.Checks, checkJSON(c))
				}
				if counts != nil {
					payload.Ledger = &ledgerStatusJSON{Path: cfg.LedgerPath(), Counts: counts}
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, c := range checks {
				kind := statusOK
				if !c.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(c.Name, kind, c.Detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Directories", colorize) {
				fmt.Fprintln(out, line)
			}
			rows := make([][]string, 0, len(inventory))
			for _, inv := range inventory {
				rows = append(rows, []string{inv.Role, inv.Path, yesNo(inv.Exists), fmt.Sprintf("%d", inv.Files)})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Role", "Path", "Exists", "Files"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				wrap:    []int{1},
			}, rows))

			if counts != nil {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Ledger", colorize) {
					fmt.Fprintln(out, line)
				}
				statuses := make([]string, 0, len(counts))
				for status := range counts {
					statuses = append(statuses, status)
				}
				sort.Strings(statuses)
				if len(statuses) == 0 {
					fmt.Fprintln(out, renderStatusLine("Dispositions", statusInfo, "none recorded", colorize))
				}
				for _, status := range statuses {
					fmt.Fprintln(out, renderStatusLine(status, statusInfo, fmt.Sprintf("%d", counts[status]), colorize))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// ledgerCounts returns nil when the ledger is disabled or has not been created.
func ledgerCounts(ctx context.Context, cfg *config.Config) (map[string]int, error) {
	store, err := openExistingLedger(cfg)
	if err != nil || store == nil {
		return nil, err
	}
	defer store.Close()
	return store.StatusCounts(ctx)
}

// openExistingLedger opens the ledger without creating it.
func openExistingLedger(cfg *config.Config) (*ledger.Store, error) {
	if !cfg.Ledger.Enabled {
		return nil, nil
	}
	if _, err := os.Stat(cfg.LedgerPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat ledger: %w", err)
	}
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}
