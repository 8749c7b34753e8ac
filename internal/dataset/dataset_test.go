package dataset_test

import (
	"testing"

	"intake/internal/dataset"
)

func TestPopulated(t *testing.T) {
	var nilSet *dataset.Set
	if nilSet.Populated() {
		t.Fatal("nil set must not be populated")
	}
	empty := &dataset.Set{Name: "empty"}
	if empty.Populated() {
		t.Fatal("set without tables must not be populated")
	}
	zeroRows := (&dataset.Set{}).Add(dataset.Table{Name: "t", Columns: []string{"a"}})
	if !zeroRows.Populated() {
		t.Fatal("set with a zero-row table should be populated")
	}
}

func TestTotalsAndNames(t *testing.T) {
	set := &dataset.Set{}
	set.Add(dataset.Table{Name: "one", Columns: []string{"A", "b"}, Rows: [][]string{{"1", "2"}}}).
		Add(dataset.Table{Name: "two", Rows: [][]string{{"x"}, {"y"}}})

	if got := set.TotalRows(); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	names := set.TableNames()
	if len(names) != 2 || names[0] != "one" || names[1] != "two" {
		t.Fatalf("unexpected table names %v", names)
	}
	if idx := set.Tables[0].Column("a"); idx != 0 {
		t.Fatalf("expected case-insensitive column lookup, got %d", idx)
	}
	if idx := set.Tables[0].Column("missing"); idx != -1 {
		t.Fatalf("expected -1 for missing column, got %d", idx)
	}
}
