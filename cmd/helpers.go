package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// parseTime accepts epoch milliseconds, RFC 3339 or a local YYYY-MM-DD date
// and returns epoch milliseconds. A bare date is its first millisecond, or
// its last when endOfDay is set.
func parseTime(s string, endOfDay bool) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).UnixMilli() - 1, nil
		}
		return t.UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid time %q: want epoch ms, RFC 3339 or YYYY-MM-DD", s)
}

// parseMeta turns key=value pairs into a metadata map. Values that parse as
// JSON (numbers, booleans, objects) keep their type; anything else is a string.
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", p)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			meta[k] = decoded
		} else {
			meta[k] = v
		}
	}
	return meta, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatBytes renders n using binary units, e.g. "12.3 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
