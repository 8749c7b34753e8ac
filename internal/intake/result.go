package intake

import (
	"sort"
	"time"

	"intake/internal/dataset"
	"intake/internal/services"
)

// Status is the classification of one processed file.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of ProcessOne. Data is set only when Status is
// StatusSucceeded; Err is set only when Status is StatusFailed.
type Result struct {
	Status      Status
	Source      string
	Destination string
	Data        *dataset.Set
	Err         error
}

// Succeeded reports whether the file was processed and moved to the processed
// directory.
func (r Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Moved reports whether the file left the unprocessed directory.
func (r Result) Moved() bool {
	return r.Destination != ""
}

// BatchResult maps absolute source paths to the payloads of successful files.
type BatchResult map[string]*dataset.Set

// Paths returns the result keys in sorted order.
func (b BatchResult) Paths() []string {
	paths := make([]string, 0, len(b))
	for path := range b {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Disposition is the flattened record of one routing decision, delivered to
// observers. Failures appear here even though BatchResult omits them.
type Disposition struct {
	Source      string
	Destination string
	Status      Status
	Kind        string
	Reason      string
	Tables      int
	Rows        int
	Moved       bool
	At          time.Time
}

func newDisposition(r Result, at time.Time) Disposition {
	d := Disposition{
		Source:      r.Source,
		Destination: r.Destination,
		Status:      r.Status,
		Moved:       r.Moved(),
		At:          at,
	}
	if r.Err != nil {
		d.Kind = services.Kind(r.Err)
		d.Reason = r.Err.Error()
	}
	if r.Data != nil {
		d.Tables = len(r.Data.Tables)
		d.Rows = r.Data.TotalRows()
	}
	return d
}
