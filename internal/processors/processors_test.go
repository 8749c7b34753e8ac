package processors_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"intake/internal/dataset"
	"intake/internal/intake"
	"intake/internal/processors"
	"intake/internal/services"
	"intake/internal/testsupport"
)

func process(t *testing.T, p intake.Processor, name, content string) (*dataset.Set, error) {
	t.Helper()
	path := testsupport.WriteText(t, t.TempDir(), name, content)
	return p.ProcessFile(context.Background(), path)
}

func requireTable(t *testing.T, set *dataset.Set, index int, name string, columns []string, rows [][]string) {
	t.Helper()
	if set == nil || len(set.Tables) <= index {
		t.Fatalf("expected table %d, got %+v", index, set)
	}
	table := set.Tables[index]
	if table.Name != name {
		t.Fatalf("table %d: name %q, want %q", index, table.Name, name)
	}
	if !reflect.DeepEqual(table.Columns, columns) {
		t.Fatalf("table %d: columns %v, want %v", index, table.Columns, columns)
	}
	if len(rows) == 0 && len(table.Rows) == 0 {
		return
	}
	if !reflect.DeepEqual(table.Rows, rows) {
		t.Fatalf("table %d: rows %v, want %v", index, table.Rows, rows)
	}
}

func TestCSVWithHeader(t *testing.T) {
	set, err := process(t, processors.CSV{HasHeader: true}, "orders.csv", "\ufeff Order ID ,Qty,qty\n1,2,3\n4,5,6\n")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "orders", []string{"order id", "qty", "qty_2"}, [][]string{{"1", "2", "3"}, {"4", "5", "6"}})
}

func TestCSVDuplicateHeadersNeverCollide(t *testing.T) {
	cases := []struct {
		header string
		want   []string
	}{
		{"a,a,a_2", []string{"a", "a_3", "a_2"}},
		{"a_2,a,a", []string{"a_2", "a", "a_3"}},
		{"x,,x,column_2", []string{"x", "column_2", "x_2", "column_2_2"}},
	}
	for _, tc := range cases {
		set, err := process(t, processors.CSV{HasHeader: true}, "dup.csv", tc.header+"\n")
		if err != nil {
			t.Fatalf("%s: ProcessFile: %v", tc.header, err)
		}
		requireTable(t, set, 0, "dup", tc.want, nil)
	}
}

func TestCSVWithoutHeaderAndDelimiter(t *testing.T) {
	set, err := process(t, processors.CSV{Delimiter: ';'}, "plain.txt", "a;b\nc;d\n")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "plain", []string{"column_1", "column_2"}, [][]string{{"a", "b"}, {"c", "d"}})
}

func TestCSVEmptyFileHasNoTables(t *testing.T) {
	set, err := process(t, processors.CSV{HasHeader: true}, "empty.csv", "")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if set.Populated() {
		t.Fatalf("expected no tables, got %+v", set.Tables)
	}
}

func TestCSVHeaderOnlyKeepsTable(t *testing.T) {
	set, err := process(t, processors.CSV{HasHeader: true}, "h.csv", "a,b\n")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "h", []string{"a", "b"}, nil)
}

func TestCSVRaggedRowsFailValidation(t *testing.T) {
	_, err := process(t, processors.CSV{HasHeader: true}, "bad.csv", "a,b\n1\n")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCSVLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("name\ncafé\n")
	if err != nil {
		t.Fatal(err)
	}
	set, err := process(t, processors.CSV{HasHeader: true, Encoding: "latin1"}, "l.csv", encoded)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "l", []string{"name"}, [][]string{{"café"}})
}

func TestCSVUnknownEncoding(t *testing.T) {
	_, err := process(t, processors.CSV{Encoding: "ebcdic"}, "x.csv", "a\n")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestJSONArrayOfObjects(t *testing.T) {
	set, err := process(t, processors.JSON{}, "people.json", `[{"name":"ann","age":31},{"name":"bo","tags":["x"],"ok":true}]`)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "people", []string{"age", "name", "ok", "tags"}, [][]string{
		{"31", "ann", "", ""},
		{"", "bo", "true", `["x"]`},
	})
}

func TestJSONObjectOfArrays(t *testing.T) {
	set, err := process(t, processors.JSON{}, "bundle.json", `{"version":2,"users":[{"id":1}],"groups":[{"id":"g"}],"empty":[]}`)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(set.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %v", set.TableNames())
	}
	requireTable(t, set, 0, "groups", []string{"id"}, [][]string{{"g"}})
	requireTable(t, set, 1, "users", []string{"id"}, [][]string{{"1"}})
}

func TestJSONInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":    `{"a":`,
		"scalars":   `[1,2,3]`,
		"trailing":  `[] []`,
		"top level": `"text"`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := process(t, processors.JSON{}, "bad.json", content); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestYAMLDocuments(t *testing.T) {
	content := "- sku: a1\n  qty: 2\n- sku: b2\n  qty: 0.5\n---\nbins:\n  - id: 7\n"
	set, err := process(t, processors.YAML{}, "stock.yaml", content)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(set.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %v", set.TableNames())
	}
	requireTable(t, set, 0, "stock", []string{"qty", "sku"}, [][]string{{"2", "a1"}, {"0.5", "b2"}})
	requireTable(t, set, 1, "bins", []string{"id"}, [][]string{{"7"}})
}

func TestYAMLInvalid(t *testing.T) {
	if _, err := process(t, processors.YAML{}, "bad.yaml", "a: [1\n"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTOMLArrayOfTables(t *testing.T) {
	content := "title = \"inventory\"\n\n[[items]]\nname = \"bolt\"\ncount = 10\n\n[[items]]\nname = \"nut\"\n"
	set, err := process(t, processors.TOML{}, "inv.toml", content)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	requireTable(t, set, 0, "items", []string{"count", "name"}, [][]string{{"10", "bolt"}, {"", "nut"}})
	if len(set.Tables) != 1 {
		t.Fatalf("expected scalar keys ignored, got %v", set.TableNames())
	}
}

func TestTOMLInvalid(t *testing.T) {
	if _, err := process(t, processors.TOML{}, "bad.toml", "= nope"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMarkdownTables(t *testing.T) {
	content := "# Report\n\nIntro text.\n\n## Totals\n\n| Region | **Sales** |\n|---|---:|\n| north | 10 |\n| south | `20` |\n\n| a |\n|---|\n| 1 |\n"
	set, err := process(t, processors.NewMarkdown(), "report.md", content)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(set.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %v", set.TableNames())
	}
	requireTable(t, set, 0, "Totals", []string{"Region", "Sales"}, [][]string{{"north", "10"}, {"south", "20"}})
	requireTable(t, set, 1, "Totals_2", []string{"a"}, [][]string{{"1"}})
}

func TestMarkdownTableNamesStayUnique(t *testing.T) {
	table := "| a |\n|---|\n| 1 |\n\n"
	content := "# Totals\n\n" + table + "# Totals\n\n" + table + "# Totals_2\n\n" + table
	set, err := process(t, processors.NewMarkdown(), "dup.md", content)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	want := []string{"Totals", "Totals_2", "Totals_2_2"}
	if got := set.TableNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("table names %v, want %v", got, want)
	}
}

func TestMarkdownWithoutTables(t *testing.T) {
	set, err := process(t, processors.NewMarkdown(), "notes.md", "# Notes\n\njust prose\n")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if set.Populated() {
		t.Fatalf("expected no tables, got %v", set.TableNames())
	}
}

func TestProcessorsHonourCancelledContext(t *testing.T) {
	path := testsupport.WriteText(t, t.TempDir(), "a.json", "[]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (processors.JSON{}).ProcessFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
