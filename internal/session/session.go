// Package session defines the persisted shape of a focus session and its
// attention log. Field names and JSON keys match the on-disk format of
// sessions/<id>.json.
package session

import "time"

// Session is one tracked focus period.
type Session struct {
	ID        string     `json:"id"`
	StartTime int64      `json:"startTime"`         // epoch ms, immutable after creation
	EndTime   *int64     `json:"endTime,omitempty"` // epoch ms, nil while the session is open
	Config    Config     `json:"config"`
	Logs      []LogEntry `json:"logs"`
}

// Config holds the parameters a session was started with.
type Config struct {
	Duration      float64  `json:"duration,omitempty"`      // minutes
	BreakInterval float64  `json:"breakInterval,omitempty"` // minutes
	Goal          string   `json:"goal,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// LogEntry is one attention observation. Confidence is passed through as
// produced; some producers emit percentages rather than [0,1].
type LogEntry struct {
	Timestamp  int64          `json:"timestamp"` // epoch ms
	Status     string         `json:"status"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Open reports whether the session has not been ended yet.
func (s *Session) Open() bool {
	return s.EndTime == nil
}

// Window returns the effective session window in epoch ms: the start time and
// either the end time or now for a session that is still open.
func (s *Session) Window(now time.Time) (start, end int64) {
	end = now.UnixMilli()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return s.StartTime, end
}

// HasAnyTag reports whether the session config shares at least one tag with tags.
func (s *Session) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range s.Config.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a local time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
