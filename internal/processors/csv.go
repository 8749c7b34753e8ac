package processors

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"intake/internal/dataset"
	"intake/internal/services"
)

// CSV parses delimited text into a single table named after the file stem.
type CSV struct {
	// Delimiter separates fields. Zero means a comma.
	Delimiter rune
	// Encoding is one of utf-8, latin1, iso-8859-1, windows-1252. Empty means utf-8.
	Encoding string
	// HasHeader treats the first record as column names. Without it columns
	// are named column_1, column_2, ...
	HasHeader bool
}

// ProcessFile implements intake.Processor. An empty file yields an empty set.
// Records with a field count different from the first record fail validation.
func (c CSV) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := lookupEncoding(c.Encoding)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "process", "parse csv", "", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "process", "read file", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, enc.NewDecoder()))
	if c.Delimiter != 0 {
		reader.Comma = c.Delimiter
	}

	set := &dataset.Set{}
	table := dataset.Table{Name: stem(path)}
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "process", "parse csv", path, err)
		}
		if first {
			first = false
			if c.HasHeader {
				table.Columns = headerColumns(record)
				continue
			}
			table.Columns = generatedColumns(len(record))
		}
		table.Rows = append(table.Rows, record)
	}
	if first {
		return set, nil
	}
	return set.Add(table), nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func headerColumns(record []string) []string {
	caser := cases.Lower(language.Und)
	names := make([]string, len(record))
	taken := make(map[string]bool, len(record))
	for i, raw := range record {
		name := caser.String(strings.TrimSpace(raw))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = name
		taken[name] = true
	}

	// Suffixes skip every header name, so a later "a_2" keeps its own name.
	columns := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		candidate := name
		if seen[candidate] {
			candidate = uniqueName(name, seen, taken)
		}
		seen[candidate] = true
		columns[i] = candidate
	}
	return columns
}

func generatedColumns(n int) []string {
	columns := make([]string, n)
	for i := range columns {
		columns[i] = fmt.Sprintf("column_%d", i+1)
	}
	return columns
}
