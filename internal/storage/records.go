package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fakeyudi/focus/internal/session"
)

const recordExt = ".json"

// stampStep separates creation stamps of records created within one clock tick.
const stampStep = time.Microsecond

// records is the session record store: one JSON file per session under dir.
//
// Every record's modification time is its creation stamp. Create assigns a
// strictly increasing stamp and Update carries it over to the rewritten
// file, so sorting by mtime yields creation order.
type records struct {
	dir     string
	now     func() time.Time
	locks   *keyedMutex
	readDir func(name string) ([]os.DirEntry, error)

	mu        sync.Mutex // guards lastStamp
	lastStamp time.Time
}

// recordInfo describes a record on disk without decoding it.
type recordInfo struct {
	ID      string
	Created time.Time
	Size    int64
}

func newRecords(dir string, now func() time.Time) (*records, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sessions directory: %w", err)
	}
	r := &records{dir: dir, now: now, locks: newKeyedMutex(), readDir: os.ReadDir}

	// Seed the stamp sequence so new records sort after existing ones even
	// if the wall clock stepped backwards since they were written.
	infos, err := r.infos()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Created.After(r.lastStamp) {
			r.lastStamp = info.Created
		}
	}
	return r, nil
}

func (r *records) path(id string) string {
	return filepath.Join(r.dir, id+recordExt)
}

// validID rejects ids that would escape the sessions directory or collide
// with temp files.
func validID(id string) bool {
	if id == "" || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func (r *records) nextStamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp := r.now()
	if !stamp.After(r.lastStamp) {
		stamp = r.lastStamp.Add(stampStep)
	}
	r.lastStamp = stamp
	return stamp
}

// Create persists a new record. It never replaces an existing file: the
// content is staged in a temp file and hard-linked into place, which fails
// with ErrExists when the id is taken.
func (r *records) Create(s *session.Session) error {
	if !validID(s.ID) {
		return fmt.Errorf("invalid session id %q", s.ID)
	}
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	path := r.path(s.ID)

	tmpName, err := writeTemp(path, data, r.nextStamp())
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", s.ID, ErrExists)
		}
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Read returns the record for id, ErrNotFound when it is absent, a
// *ParseError when it is malformed and a *ReadError on I/O failure.
func (r *records) Read(id string) (*session.Session, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.readFile(r.path(id))
}

func (r *records) readFile(path string) (*session.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if s.Logs == nil {
		s.Logs = []session.LogEntry{}
	}
	return &s, nil
}

// Update applies mutate to the stored record and writes it back. Calls for
// the same id are serialized; an error from mutate aborts without writing.
func (r *records) Update(id string, mutate func(*session.Session) error) (*session.Session, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	unlock := r.locks.Lock(id)
	defer unlock()

	path := r.path(id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	s, err := r.readFile(path)
	if err != nil {
		return nil, err
	}
	if err := mutate(s); err != nil {
		return nil, err
	}
	data, err := encodeSession(s)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, data, info.ModTime()); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the record for id. Deleting a missing record is not an error.
func (r *records) Delete(id string) error {
	if !validID(id) {
		return nil
	}
	unlock := r.locks.Lock(id)
	defer unlock()

	path := r.path(id)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// List returns the ids of all retained records in directory order.
func (r *records) List() ([]string, error) {
	entries, err := r.readDir(r.dir)
	if err != nil {
		return nil, &ReadError{Path: r.dir, Err: err}
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if id, ok := recordID(e); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// infos returns every record with its creation stamp, oldest first. Records
// that vanish between listing and stat are skipped.
func (r *records) infos() ([]recordInfo, error) {
	entries, err := r.readDir(r.dir)
	if err != nil {
		return nil, &ReadError{Path: r.dir, Err: err}
	}
	out := make([]recordInfo, 0, len(entries))
	for _, e := range entries {
		id, ok := recordID(e)
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &ReadError{Path: r.path(id), Err: err}
		}
		out = append(out, recordInfo{ID: id, Created: fi.ModTime(), Size: fi.Size()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// diskUsage sums the size of every regular file in the sessions directory.
func (r *records) diskUsage() (int64, error) {
	entries, err := r.readDir(r.dir)
	if err != nil {
		return 0, &ReadError{Path: r.dir, Err: err}
	}
	var total int64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		total += fi.Size()
	}
	return total, nil
}

func recordID(e fs.DirEntry) (string, bool) {
	name := e.Name()
	if !e.Type().IsRegular() || isTemp(name) || !strings.HasSuffix(name, recordExt) {
		return "", false
	}
	return strings.TrimSuffix(name, recordExt), true
}

func encodeSession(s *session.Session) ([]byte, error) {
	if s.Logs == nil {
		s.Logs = []session.LogEntry{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	return data, nil
}
