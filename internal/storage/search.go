package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fakeyudi/focus/internal/session"
)

// TimeRange bounds a query in epoch ms. A zero bound is open.
type TimeRange struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

func (tr *TimeRange) empty() bool {
	return tr == nil || (tr.Start == 0 && tr.End == 0)
}

// overlaps reports whether the window [start, end] intersects tr.
func (tr *TimeRange) overlaps(start, end int64) bool {
	return (tr.Start == 0 || end >= tr.Start) && (tr.End == 0 || start <= tr.End)
}

func (tr *TimeRange) contains(ts int64) bool {
	return (tr.Start == 0 || ts >= tr.Start) && (tr.End == 0 || ts <= tr.End)
}

// SearchParams is a conjunctive filter over log entries. Zero values disable
// a filter; Limit 0 returns every match after Offset.
type SearchParams struct {
	TimeRange     *TimeRange `json:"timeRange,omitempty"`
	Status        string     `json:"status,omitempty"`
	MinConfidence *float64   `json:"minConfidence,omitempty"`
	MaxConfidence *float64   `json:"maxConfidence,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Text          string     `json:"text,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}

// Match is one log entry that satisfied a search, with its parent session.
type Match struct {
	SessionID string           `json:"sessionId"`
	Entry     session.LogEntry `json:"entry"`
}

// Results is one page of matches. Total counts all matches before paging.
type Results struct {
	Entries []Match `json:"entries"`
	Total   int     `json:"total"`
}

// queryEngine answers searches by scanning every stored session. Results
// come in directory order of sessions, then log order within a session.
type queryEngine struct {
	records *records
	logger  *log.Logger
	now     func() time.Time
}

// candidates loads the sessions whose effective window overlaps tr.
// Unreadable sessions are logged and skipped.
func (q *queryEngine) candidates(tr *TimeRange) ([]*session.Session, error) {
	ids, err := q.records.List()
	if err != nil {
		return nil, err
	}
	now := q.now()
	out := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		s, err := q.records.Read(id)
		if err != nil {
			// Evicted between listing and reading.
			if !errors.Is(err, ErrNotFound) {
				q.logger.Printf("search: skipping session %s: %v", id, err)
			}
			continue
		}
		if !tr.empty() {
			start, end := s.Window(now)
			if !tr.overlaps(start, end) {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// search never fails: enumeration errors are logged and yield no results.
func (q *queryEngine) search(p SearchParams) Results {
	res := Results{Entries: []Match{}}

	sessions, err := q.candidates(p.TimeRange)
	if err != nil {
		q.logger.Printf("search failed: %v", err)
		return res
	}

	text := strings.ToLower(p.Text)
	var matches []Match
	for _, s := range sessions {
		if len(p.Tags) > 0 && !s.HasAnyTag(p.Tags) {
			continue
		}
		for _, e := range s.Logs {
			if !q.entryMatches(p, text, e) {
				continue
			}
			matches = append(matches, Match{SessionID: s.ID, Entry: e})
		}
	}

	res.Total = len(matches)
	res.Entries = append(res.Entries, page(matches, p.Offset, p.Limit)...)
	return res
}

func (q *queryEngine) entryMatches(p SearchParams, text string, e session.LogEntry) bool {
	if p.Status != "" && e.Status != p.Status {
		return false
	}
	if p.MinConfidence != nil && e.Confidence < *p.MinConfidence {
		return false
	}
	if p.MaxConfidence != nil && e.Confidence > *p.MaxConfidence {
		return false
	}
	if !p.TimeRange.empty() && !p.TimeRange.contains(e.Timestamp) {
		return false
	}
	if text != "" && !textMatches(text, e) {
		return false
	}
	return true
}

// textMatches does a case-insensitive substring match against the status and
// the JSON encoding of the metadata. text is already lower-cased.
func textMatches(text string, e session.LogEntry) bool {
	if strings.Contains(strings.ToLower(e.Status), text) {
		return true
	}
	if len(e.Metadata) == 0 {
		return false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e.Metadata); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(buf.String()), text)
}

// page applies slice semantics without reordering.
func page(matches []Match, offset, limit int) []Match {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matches[offset:end]
}
