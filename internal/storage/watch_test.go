package storage

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/focus/internal/session"
)

func TestChangeFor(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  Change
		ok    bool
	}{
		{fsnotify.Event{Name: "/r/sessions/a.json", Op: fsnotify.Create}, Change{"a", ChangeWritten}, true},
		{fsnotify.Event{Name: "/r/sessions/a.json", Op: fsnotify.Write}, Change{"a", ChangeWritten}, true},
		{fsnotify.Event{Name: "/r/sessions/a.json", Op: fsnotify.Remove}, Change{"a", ChangeRemoved}, true},
		{fsnotify.Event{Name: "/r/sessions/a.json", Op: fsnotify.Rename}, Change{"a", ChangeRemoved}, true},
		{fsnotify.Event{Name: "/r/sessions/a.json", Op: fsnotify.Chmod}, Change{}, false},
		{fsnotify.Event{Name: "/r/sessions/.tmp-123", Op: fsnotify.Create}, Change{}, false},
		{fsnotify.Event{Name: "/r/sessions/readme.txt", Op: fsnotify.Write}, Change{}, false},
	}
	for _, tc := range tests {
		got, ok := changeFor(tc.event)
		if ok != tc.ok || got != tc.want {
			t.Errorf("changeFor(%v) = (%+v, %v), want (%+v, %v)", tc.event, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWatchReportsNewSession(t *testing.T) {
	st := openTest(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Change, 16)
	done := make(chan error, 1)
	go func() {
		done <- st.Watch(ctx, func(c Change) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	s, err := st.StartSession(session.Config{})
	if err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.SessionID == s.ID && c.Kind == ChangeWritten {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Watch returned %v", err)
				}
				return
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", s.ID)
		}
	}
}
