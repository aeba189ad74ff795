package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fakeyudi/focus/internal/session"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// ForFormat returns the renderer for "markdown" or "json".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want markdown or json)", format)
	}
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	if format == "json" {
		return ".json"
	}
	return ".md"
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (jr *JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

const (
	versionSentinel = "<!-- focus-report-version: 1 -->"
	dataPrefix      = "<!-- focus-data: "
	dataSuffix      = " -->"
)

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload so the file can be parsed back.
type MarkdownRenderer struct {
	// OmitPayload drops the embedded payload, for display only.
	OmitPayload bool
}

func (mr *MarkdownRenderer) Render(r *Report) ([]byte, error) {
	if r == nil || r.Session == nil {
		return nil, fmt.Errorf("render report: no session")
	}
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	var sb strings.Builder
	s, sum := r.Session, r.Summary

	if !mr.OmitPayload {
		sb.WriteString(versionSentinel + "\n")
		sb.WriteString(dataPrefix + base64.StdEncoding.EncodeToString(jsonBytes) + dataSuffix + "\n\n")
	}

	fmt.Fprintf(&sb, "# Focus session %s\n\n", s.ID)

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Started: %s\n", stamp(s.StartTime))
	if s.EndTime != nil {
		fmt.Fprintf(&sb, "- Ended: %s\n", stamp(*s.EndTime))
	} else {
		sb.WriteString("- Ended: _in progress_\n")
	}
	fmt.Fprintf(&sb, "- Duration: %s\n", FormatDuration(sum.DurationMs))
	fmt.Fprintf(&sb, "- Entries: %d\n", sum.Entries)
	if sum.Entries > 0 {
		fmt.Fprintf(&sb, "- Mean confidence: %.2f\n", sum.MeanConfidence)
		fmt.Fprintf(&sb, "- Attentive: %.0f%%\n", sum.AttentiveShare*100)
	}
	sb.WriteString("\n")

	sb.WriteString("## Configuration\n\n")
	writeConfig(&sb, s.Config)
	sb.WriteString("\n")

	sb.WriteString("## Status Breakdown\n\n")
	if len(sum.ByStatus) == 0 {
		sb.WriteString("_No entries recorded._\n")
	} else {
		sb.WriteString("| Status | Count |\n")
		sb.WriteString("|--------|-------|\n")
		for _, c := range sum.ByStatus {
			fmt.Fprintf(&sb, "| %s | %d |\n", cell(c.Status), c.Count)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Attention Log\n\n")
	if len(s.Logs) == 0 {
		sb.WriteString("_No entries recorded._\n")
	} else {
		sb.WriteString("| Time | Status | Confidence | Metadata |\n")
		sb.WriteString("|------|--------|------------|----------|\n")
		for _, e := range s.Logs {
			fmt.Fprintf(&sb, "| %s | %s | %.2f | %s |\n",
				stamp(e.Timestamp), cell(e.Status), e.Confidence, cell(metadataText(e.Metadata)))
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func writeConfig(sb *strings.Builder, c session.Config) {
	wrote := false
	if c.Duration != 0 {
		fmt.Fprintf(sb, "- Duration: %g min\n", c.Duration)
		wrote = true
	}
	if c.BreakInterval != 0 {
		fmt.Fprintf(sb, "- Break interval: %g min\n", c.BreakInterval)
		wrote = true
	}
	if c.Goal != "" {
		fmt.Fprintf(sb, "- Goal: %s\n", c.Goal)
		wrote = true
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(sb, "- Tags: %s\n", strings.Join(c.Tags, ", "))
		wrote = true
	}
	if !wrote {
		sb.WriteString("_No configuration recorded._\n")
	}
}

func stamp(ms int64) string {
	return session.FromMillis(ms).Local().Format("2006-01-02 15:04:05")
}

// metadataText renders metadata as sorted key=value pairs.
func metadataText(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, err := json.Marshal(m[k])
		if err != nil {
			v = []byte(fmt.Sprint(m[k]))
		}
		parts[i] = k + "=" + string(v)
	}
	return strings.Join(parts, " ")
}

// cell escapes text for use inside a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
