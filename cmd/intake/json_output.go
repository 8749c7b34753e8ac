package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"intake/internal/batchrun"
	"intake/internal/intake"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type dispositionJSON struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Tables      int       `json:"tables"`
	Rows        int       `json:"rows"`
	Moved       bool      `json:"moved"`
	At          time.Time `json:"at"`
}

type runJSON struct {
	RunID        string            `json:"run_id"`
	LogPath      string            `json:"log_path"`
	Succeeded    int               `json:"succeeded"`
	Failed       int               `json:"failed"`
	Error        string            `json:"error,omitempty"`
	Dispositions []dispositionJSON `json:"dispositions"`
}

func toDispositionJSON(d intake.Disposition) dispositionJSON {
	return dispositionJSON{
		Source:      d.Source,
		Destination: d.Destination,
		Status:      string(d.Status),
		Kind:        d.Kind,
		Reason:      d.Reason,
		Tables:      d.Tables,
		Rows:        d.Rows,
		Moved:       d.Moved,
		At:          d.At,
	}
}

func toRunJSON(summary batchrun.Summary, runErr error) runJSON {
	out := runJSON{
		RunID:        summary.RunID,
		LogPath:      summary.LogPath,
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		Dispositions: make([]dispositionJSON, 0, len(summary.Dispositions)),
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	for _, d := range summary.Dispositions {
		out.Dispositions = append(out.Dispositions, toDispositionJSON(d))
	}
	return out
}
