package storage

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/focus/internal/session"
)

// Feature: focus, Property 1: retention keeps the newest min(created, max) sessions
func TestRetentionKeepsNewestSessions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 6).Draw(rt, "limit")
		n := rapid.IntRange(0, 12).Draw(rt, "n")

		clock := newFakeClock()
		st := openTest(t, t.TempDir(), WithClock(clock.Now), WithMaxSessions(limit))

		var created []string
		for i := 0; i < n; i++ {
			// Gaps of zero or a few seconds force same-minute id collisions.
			clock.Advance(time.Duration(rapid.IntRange(0, 90).Draw(rt, "gap")) * time.Second)
			s, err := st.StartSession(session.Config{})
			if err != nil {
				rt.Fatalf("StartSession: %v", err)
			}
			created = append(created, s.ID)
		}

		want := created
		if len(want) > limit {
			want = created[len(created)-limit:]
		}

		infos, err := st.records.infos()
		if err != nil {
			rt.Fatalf("infos: %v", err)
		}
		if len(infos) != len(want) {
			rt.Fatalf("retained %d sessions, want %d", len(infos), len(want))
		}
		for i, info := range infos {
			if info.ID != want[i] {
				rt.Fatalf("retained[%d] = %q, want %q", i, info.ID, want[i])
			}
		}

		meta := st.Metadata()
		if meta.SessionCount != len(want) {
			rt.Fatalf("ledger sessionCount = %d, want %d", meta.SessionCount, len(want))
		}
		if len(want) > 0 {
			if meta.OldestSession != want[0] {
				rt.Fatalf("ledger oldestSession = %q, want %q", meta.OldestSession, want[0])
			}
			if meta.LastSessionID != want[len(want)-1] {
				rt.Fatalf("ledger lastSessionId = %q, want %q", meta.LastSessionID, want[len(want)-1])
			}
		}
	})
}

// Feature: focus, Property 9: lowering the limit evicts immediately
func TestSetMaxSessionsEvictsImmediately(t *testing.T) {
	clock := newFakeClock()
	st := openTest(t, t.TempDir(), WithClock(clock.Now))

	var ids []string
	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
		s, err := st.StartSession(session.Config{})
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		ids = append(ids, s.ID)
	}

	if err := st.SetMaxSessions(2); err != nil {
		t.Fatalf("SetMaxSessions: %v", err)
	}
	if got := st.MaxSessions(); got != 2 {
		t.Errorf("MaxSessions = %d, want 2", got)
	}

	remaining, err := st.SessionIDs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 || remaining[0] != ids[3] || remaining[1] != ids[4] {
		t.Errorf("remaining = %v, want %v", remaining, ids[3:])
	}

	meta := st.Metadata()
	if meta.SessionCount != 2 || meta.OldestSession != ids[3] {
		t.Errorf("ledger = %+v, want sessionCount 2 and oldestSession %q", meta, ids[3])
	}
}

func TestSetMaxSessionsRejectsNonPositive(t *testing.T) {
	st := openTest(t, t.TempDir())
	for _, n := range []int{0, -3} {
		if err := st.SetMaxSessions(n); err == nil {
			t.Errorf("SetMaxSessions(%d) = nil, want error", n)
		}
	}
	if got := st.MaxSessions(); got != DefaultMaxSessions {
		t.Errorf("MaxSessions = %d after rejected calls, want %d", got, DefaultMaxSessions)
	}
}

// Eviction follows the storage-level creation stamp, not startTime.
func TestSweepOrdersByCreationNotStartTime(t *testing.T) {
	st := openTest(t, t.TempDir(), WithMaxSessions(10))

	// Write records whose startTime runs opposite to creation order.
	for i, id := range []string{"first", "second", "third"} {
		s := &session.Session{ID: id, StartTime: int64(1000 - i)}
		if err := st.records.Create(s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := st.retention.SetLimit(1); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}
	ids, _ := st.records.List()
	if len(ids) != 1 || ids[0] != "third" {
		t.Errorf("after sweep = %v, want [third]", ids)
	}
}

func TestSweepUnderLimitIsNoop(t *testing.T) {
	st := openTest(t, t.TempDir(), WithMaxSessions(3))
	if _, err := st.StartSession(session.Config{}); err != nil {
		t.Fatal(err)
	}
	before := st.Metadata()
	removed, err := st.retention.Sweep()
	if err != nil || removed != 0 {
		t.Errorf("Sweep = (%d, %v), want (0, nil)", removed, err)
	}
	if after := st.Metadata(); after != before {
		t.Errorf("ledger changed by no-op sweep: %+v -> %+v", before, after)
	}
}

func TestFailedSweepKeepsStartSession(t *testing.T) {
	var logs bytes.Buffer
	st := openTest(t, t.TempDir(), WithMaxSessions(1), WithLogger(log.New(&logs, "", 0)))
	st.records.readDir = func(string) ([]os.DirEntry, error) {
		return nil, errors.New("disk unavailable")
	}

	for i := 0; i < 2; i++ {
		if _, err := st.StartSession(session.Config{}); err != nil {
			t.Fatalf("StartSession %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(st.records.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("%d records on disk, want both kept after the failed sweep", len(entries))
	}
	if got := st.Metadata().SessionCount; got != 2 {
		t.Errorf("ledger sessionCount = %d, want 2", got)
	}
	if !strings.Contains(logs.String(), "sweep: listing sessions: ") {
		t.Errorf("sweep failure not logged: %q", logs.String())
	}
}
