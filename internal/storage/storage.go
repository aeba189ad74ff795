// Package storage persists focus sessions under a storage root and answers
// queries over their attention logs.
//
// Layout under the root:
//
//	metadata.json        aggregate ledger (counts, boundary ids)
//	sessions/<id>.json   one record per session
//	search-index/        reserved, currently unused
//
// Storage is the only entry point for callers. It owns the ledger and hands
// it to the retention manager; queries read session records directly.
package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/focus/internal/session"
)

const (
	sessionsDir  = "sessions"
	indexDir     = "search-index"
	metadataFile = "metadata.json"

	// maxIDAttempts bounds retries when a generated id is already taken.
	maxIDAttempts = 5
)

// Stats summarises a storage root. DiskUsage is recomputed on every call.
type Stats struct {
	SessionCount    int    `json:"sessionCount"`
	TotalLogEntries int    `json:"totalLogEntries"`
	OldestSession   string `json:"oldestSession,omitempty"`
	NewestSession   string `json:"newestSession,omitempty"`
	DiskUsage       int64  `json:"diskUsage"`
}

// Storage is the facade over the record store, ledger, retention manager and
// query engine. It is safe for concurrent use.
type Storage struct {
	root   string
	logger *log.Logger
	now    func() time.Time

	records   *records
	ledger    *Ledger
	retention *Retention
	query     *queryEngine
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger      *log.Logger
	now         func() time.Time
	maxSessions int
}

// WithLogger routes suppressed failures and eviction notices to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now for session timestamps and id generation.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxSessions sets the initial retention limit. Values <= 0 are ignored.
func WithMaxSessions(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSessions = n
		}
	}
}

// Open prepares the directory layout under root and loads the ledger,
// creating a default one if it is missing or corrupt. An empty root selects
// DefaultRoot. Open does not sweep; the limit applies from the next session
// or SetMaxSessions call.
func Open(root string, opts ...Option) (*Storage, error) {
	o := options{
		logger:      log.New(os.Stderr, "storage: ", log.LstdFlags),
		now:         time.Now,
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if root == "" {
		def, err := DefaultRoot()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		root = def
	}
	for _, dir := range []string{root, filepath.Join(root, indexDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	recs, err := newRecords(filepath.Join(root, sessionsDir), o.now)
	if err != nil {
		return nil, err
	}
	ledger, err := loadLedger(filepath.Join(root, metadataFile), o.logger)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return &Storage{
		root:      root,
		logger:    o.logger,
		now:       o.now,
		records:   recs,
		ledger:    ledger,
		retention: newRetention(recs, ledger, o.logger, o.maxSessions),
		query:     &queryEngine{records: recs, logger: o.logger, now: o.now},
	}, nil
}

// Root returns the storage root directory.
func (st *Storage) Root() string {
	return st.root
}

// Metadata returns a snapshot of the ledger.
func (st *Storage) Metadata() Metadata {
	return st.ledger.Snapshot()
}

// StartSession creates and persists a new open session, records it in the
// ledger and sweeps. A failed sweep does not fail the call.
func (st *Storage) StartSession(cfg session.Config) (*session.Session, error) {
	now := st.now()
	s := &session.Session{
		StartTime: session.Millis(now),
		Config:    cfg,
		Logs:      []session.LogEntry{},
	}

	base := session.NewID(now)
	s.ID = base
	// An evicted record frees its file name but not its id.
	if session.SameMinute(st.ledger.Snapshot().LastSessionID, base) {
		s.ID = session.WithSuffix(base)
	}
	for attempt := 1; ; attempt++ {
		err := st.records.Create(s)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrExists) || attempt == maxIDAttempts {
			st.logger.Printf("start session %s: %v", s.ID, err)
			return nil, fmt.Errorf("creating session: %w", err)
		}
		s.ID = session.WithSuffix(base)
	}

	if err := st.ledger.Update(func(m *Metadata) {
		m.SessionCount++
		m.LastSessionID = s.ID
		if m.OldestSession == "" {
			m.OldestSession = s.ID
		}
	}); err != nil {
		// The record exists; the ledger drifts until the next successful save.
		st.logger.Printf("start session %s: saving ledger: %v", s.ID, err)
	}

	_, _ = st.retention.Sweep() // best-effort; failures are logged by the sweep
	return s, nil
}

// AddLogEntry appends entry to the session's log. It reports false with a
// nil error when the session does not exist.
func (st *Storage) AddLogEntry(id string, entry session.LogEntry) (bool, error) {
	_, err := st.records.Update(id, func(s *session.Session) error {
		s.Logs = append(s.Logs, entry)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		st.logger.Printf("add log entry to session %s: %v", id, err)
		return false, err
	}

	if err := st.ledger.Update(func(m *Metadata) { m.TotalLogEntries++ }); err != nil {
		st.logger.Printf("add log entry to session %s: saving ledger: %v", id, err)
	}
	return true, nil
}

// EndSession stamps the session's end time with the current time. Calling
// it again overwrites the previous end time. It reports false with a nil
// error when the session does not exist.
func (st *Storage) EndSession(id string) (bool, error) {
	end := session.Millis(st.now())
	_, err := st.records.Update(id, func(s *session.Session) error {
		s.EndTime = &end
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		st.logger.Printf("end session %s: %v", id, err)
		return false, err
	}
	return true, nil
}

// GetSession returns the stored session, or nil with a nil error when it
// does not exist. A malformed record is reported as an error.
func (st *Storage) GetSession(id string) (*session.Session, error) {
	s, err := st.records.Read(id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		st.logger.Printf("get session %s: %v", id, err)
		return nil, err
	}
	return s, nil
}

// SessionIDs lists retained sessions whose effective window overlaps tr, in
// directory order. A nil or zero tr lists every session.
func (st *Storage) SessionIDs(tr *TimeRange) ([]string, error) {
	if tr.empty() {
		return st.records.List()
	}
	sessions, err := st.query.candidates(tr)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids, nil
}

// SetMaxSessions changes the retention limit and evicts down to it at once.
// Only a non-positive limit is reported as an error.
func (st *Storage) SetMaxSessions(n int) error {
	if n <= 0 {
		return fmt.Errorf("max sessions must be positive, got %d", n)
	}
	_, _ = st.retention.SetLimit(n) // eviction is best-effort; the sweep logs failures
	return nil
}

// MaxSessions returns the retention limit.
func (st *Storage) MaxSessions() int {
	return st.retention.Limit()
}

// Stats reports the ledger counters and the current on-disk footprint of
// the session records plus the ledger.
func (st *Storage) Stats() (Stats, error) {
	meta := st.ledger.Snapshot()
	usage, err := st.records.diskUsage()
	if err != nil {
		st.logger.Printf("stats: %v", err)
		return Stats{}, err
	}
	return Stats{
		SessionCount:    meta.SessionCount,
		TotalLogEntries: meta.TotalLogEntries,
		OldestSession:   meta.OldestSession,
		NewestSession:   meta.LastSessionID,
		DiskUsage:       usage + st.ledger.size(),
	}, nil
}

// Search scans stored sessions for log entries matching p. It never fails;
// see queryEngine.search.
func (st *Storage) Search(p SearchParams) Results {
	return st.query.search(p)
}
