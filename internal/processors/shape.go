package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"intake/internal/dataset"
	"intake/internal/services"
)

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readSource(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "process", "read file", path, err)
	}
	return data, nil
}

// tablesFromValue converts a decoded document into tables. A list of records
// becomes one table called name; a mapping yields one table per key whose
// value is a list of records. Other keys are ignored.
func tablesFromValue(name string, value any) ([]dataset.Table, error) {
	switch v := value.(type) {
	case []any:
		table, ok, err := recordsTable(name, v)
		if err != nil || !ok {
			return nil, err
		}
		return []dataset.Table{table}, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var tables []dataset.Table
		for _, key := range keys {
			list, ok := v[key].([]any)
			if !ok {
				continue
			}
			table, ok, err := recordsTable(key, list)
			if err != nil {
				return nil, err
			}
			if ok {
				tables = append(tables, table)
			}
		}
		return tables, nil
	case map[any]any:
		record, _ := asRecord(v)
		return tablesFromValue(name, record)
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported top-level %T", value)
	}
}

// recordsTable builds a table from a list of mappings. Columns are the union
// of keys in sorted order. An empty list reports ok=false.
func recordsTable(name string, list []any) (dataset.Table, bool, error) {
	if len(list) == 0 {
		return dataset.Table{}, false, nil
	}
	records := make([]map[string]any, 0, len(list))
	seen := make(map[string]struct{})
	for i, item := range list {
		record, ok := asRecord(item)
		if !ok {
			return dataset.Table{}, false, fmt.Errorf("%s[%d]: expected a mapping, got %T", name, i, item)
		}
		for key := range record {
			seen[key] = struct{}{}
		}
		records = append(records, record)
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatValue(record[col])
		}
		rows = append(rows, row)
	}
	return dataset.Table{Name: name, Columns: columns, Rows: rows}, true, nil
}

func asRecord(item any) (map[string]any, bool) {
	switch v := item.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case []any, map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}

// uniqueName returns name, or the first name_N (N >= 2) that none of the
// taken sets contains.
func uniqueName(name string, taken ...map[string]bool) string {
	inUse := func(candidate string) bool {
		for _, set := range taken {
			if set[candidate] {
				return true
			}
		}
		return false
	}
	if !inUse(name) {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !inUse(candidate) {
			return candidate
		}
	}
}
