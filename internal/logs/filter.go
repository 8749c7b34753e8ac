package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"intake/internal/logging"
)

// Filter selects run log records. The zero value matches everything.
type Filter struct {
	// MinLevel drops records below this level ("debug", "info", "warn", "error").
	MinLevel string
	// RunID keeps only records carrying this run_id.
	RunID string
}

// Match reports whether line passes the filter. Non-JSON lines always match.
func (f Filter) Match(line string) bool {
	if f.MinLevel == "" && f.RunID == "" {
		return true
	}
	record, ok := decode(line)
	if !ok {
		return true
	}
	if f.RunID != "" {
		if id, _ := record[logging.FieldRunID].(string); id != f.RunID {
			return false
		}
	}
	if f.MinLevel != "" {
		level, _ := record["level"].(string)
		if logging.ParseLevel(level) < logging.ParseLevel(f.MinLevel) {
			return false
		}
	}
	return true
}

// Format renders a JSON record as "15:04:05 LEVEL message key=value ...".
// Lines that are not JSON are returned unchanged.
func Format(line string) string {
	record, ok := decode(line)
	if !ok {
		return line
	}
	var b strings.Builder
	if ts, _ := record["ts"].(string); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			ts = parsed.Local().Format("15:04:05")
		}
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	level, _ := record["level"].(string)
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(level))
	if msg, _ := record["msg"].(string); msg != "" {
		b.WriteByte(' ')
		b.WriteString(msg)
	}

	keys := make([]string, 0, len(record))
	for key := range record {
		switch key {
		case "ts", "level", "msg":
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, record[key])
	}
	return b.String()
}

func decode(line string) (map[string]any, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return nil, false
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return nil, false
	}
	return record, true
}
