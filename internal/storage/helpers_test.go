package storage

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock for deterministic ids and timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 7, 3, 20, 7, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// openTest opens a store in a fresh temp dir with a discarded logger.
func openTest(t testing.TB, dir string, opts ...Option) *Storage {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	st, err := Open(dir, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func ptr[T any](v T) *T {
	return &v
}
