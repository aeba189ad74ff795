// Package report turns a stored session into a shareable document.
package report

import (
	"sort"
	"time"

	"github.com/fakeyudi/focus/internal/session"
)

// AttentiveStatus is the status label counted towards Summary.AttentiveShare.
const AttentiveStatus = "attentive"

// Report is the complete, renderable representation of one session.
type Report struct {
	Session *session.Session `json:"session"`
	Summary Summary          `json:"summary"`
}

// Summary holds figures derived from a session's log.
type Summary struct {
	Open           bool          `json:"open"`
	DurationMs     int64         `json:"durationMs"`
	Entries        int           `json:"entries"`
	ByStatus       []StatusCount `json:"byStatus"`
	MeanConfidence float64       `json:"meanConfidence"`
	AttentiveShare float64       `json:"attentiveShare"` // fraction of entries with AttentiveStatus
}

// StatusCount is the number of entries carrying one status label.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Build summarizes s. Open sessions are measured up to now.
func Build(s *session.Session, now time.Time) *Report {
	start, end := s.Window(now)
	sum := Summary{
		Open:       s.Open(),
		DurationMs: end - start,
		Entries:    len(s.Logs),
		ByStatus:   []StatusCount{},
	}
	if sum.DurationMs < 0 {
		sum.DurationMs = 0
	}

	counts := map[string]int{}
	var total float64
	for _, e := range s.Logs {
		counts[e.Status]++
		total += e.Confidence
	}
	if n := len(s.Logs); n > 0 {
		sum.MeanConfidence = total / float64(n)
		sum.AttentiveShare = float64(counts[AttentiveStatus]) / float64(n)
	}
	for status, n := range counts {
		sum.ByStatus = append(sum.ByStatus, StatusCount{Status: status, Count: n})
	}
	// Most frequent first; ties broken by label for stable output.
	sort.Slice(sum.ByStatus, func(i, j int) bool {
		a, b := sum.ByStatus[i], sum.ByStatus[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Status < b.Status
	})

	return &Report{Session: s, Summary: sum}
}

// FormatDuration renders ms as a compact duration such as "1h25m" or "40s".
func FormatDuration(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	if d >= time.Minute {
		d = d.Round(time.Minute)
	}
	s := d.String()
	if len(s) > 2 && s[len(s)-2:] == "0s" && d >= time.Minute {
		s = s[:len(s)-2]
	}
	return s
}
