package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"
)

// SchemaVersion is written into freshly created ledgers.
const SchemaVersion = "1.0"

// Metadata is the aggregate ledger persisted as metadata.json. It is
// bookkeeping only: SessionCount and OldestSession may drift from the record
// store after a crash between a record write and the ledger save.
type Metadata struct {
	LastSessionID   string `json:"lastSessionId,omitempty"`
	SessionCount    int    `json:"sessionCount"`
	TotalLogEntries int    `json:"totalLogEntries"` // lifetime counter, never decremented
	OldestSession   string `json:"oldestSession,omitempty"`
	Version         string `json:"version"`
}

// DefaultMetadata returns the ledger of an empty storage root.
func DefaultMetadata() Metadata {
	return Metadata{Version: SchemaVersion}
}

// Ledger owns the in-memory copy of the metadata and its file. All mutation
// goes through Update, which persists the full record.
type Ledger struct {
	path   string
	logger *log.Logger

	mu   sync.Mutex
	meta Metadata
}

// loadLedger reads the ledger at path. An absent or unparsable file is
// replaced by DefaultMetadata, which is persisted before returning.
func loadLedger(path string, logger *log.Logger) (*Ledger, error) {
	l := &Ledger{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.meta = DefaultMetadata()
		return l, l.save()
	case err != nil:
		return nil, &ReadError{Path: path, Err: err}
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		logger.Printf("ledger %s is corrupt, resetting to defaults: %v", path, err)
		l.meta = DefaultMetadata()
		return l, l.save()
	}
	if meta.Version == "" {
		meta.Version = SchemaVersion
	}
	l.meta = meta
	return l, nil
}

// Snapshot returns a copy of the current metadata.
func (l *Ledger) Snapshot() Metadata {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta
}

// Update applies fn to the metadata and persists the result. If the save
// fails the in-memory state keeps the change, matching what the next
// successful save will write.
func (l *Ledger) Update(fn func(*Metadata)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.meta)
	return l.save()
}

// save writes the whole ledger. Callers hold mu or own l exclusively.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	return writeFileAtomic(l.path, data, time.Time{})
}

// size returns the ledger file size in bytes, 0 if it is missing.
func (l *Ledger) size() int64 {
	fi, err := os.Stat(l.path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
