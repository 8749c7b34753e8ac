// Package dataset holds the tabular payload produced by intake processors.
package dataset

import "strings"

// Table is one named tabular dataset. Rows hold values in Columns order.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows.
func (t Table) RowCount() int {
	return len(t.Rows)
}

// Column returns the index of the named column or -1.
func (t Table) Column(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Set is the structured payload extracted from a single file.
type Set struct {
	// Name identifies the source. The orchestrator sets it to the original
	// absolute path once the file has been routed to the processed directory.
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// Populated reports whether the set carries at least one table. A table with
// zero rows still counts.
func (s *Set) Populated() bool {
	return s != nil && len(s.Tables) > 0
}

// Add appends a table and returns the set for chaining.
func (s *Set) Add(t Table) *Set {
	s.Tables = append(s.Tables, t)
	return s
}

// TotalRows sums the rows of every table.
func (s *Set) TotalRows() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, t := range s.Tables {
		total += len(t.Rows)
	}
	return total
}

// TableNames lists table names in order.
func (s *Set) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}
