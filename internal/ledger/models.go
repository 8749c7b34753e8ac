package ledger

import "time"

// Dirs captures the directory roles a run was configured with.
type Dirs struct {
	Unprocessed string `json:"unprocessed_dir"`
	Processed   string `json:"processed_dir"`
	Error       string `json:"error_dir"`
}

// Run summarizes one batch run.
type Run struct {
	ID           string     `json:"id"`
	Dirs         Dirs       `json:"dirs"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Succeeded    int        `json:"succeeded"`
	Failed       int        `json:"failed"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Finished reports whether FinishRun was recorded.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Entry is one stored file disposition.
type Entry struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Tables      int       `json:"tables"`
	Rows        int       `json:"rows"`
	Moved       bool      `json:"moved"`
	RecordedAt  time.Time `json:"recorded_at"`
}
