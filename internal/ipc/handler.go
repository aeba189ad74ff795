// Package ipc exposes the storage facade to a host UI as request/response
// envelopes. Every call returns a Response; failures are reported through
// Success and Error and never escape as panics.
package ipc

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fakeyudi/focus/internal/session"
	"github.com/fakeyudi/focus/internal/storage"
)

// DefaultLocationLabel is reported as the storage path while the default
// root is in use.
const DefaultLocationLabel = "Default location"

// ErrNoPath is returned when SelectStoragePath gets an empty directory.
var ErrNoPath = errors.New("no directory selected")

// Response is the envelope every operation returns.
type Response struct {
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	Session     *session.Session `json:"session,omitempty"`
	Results     *storage.Results `json:"results,omitempty"`
	Stats       *storage.Stats   `json:"stats,omitempty"`
	StoragePath string           `json:"storagePath,omitempty"`
	IsDefault   *bool            `json:"isDefault,omitempty"`
}

func failure(err error) Response {
	return Response{Error: err.Error()}
}

// Opener opens the storage root at path with the given retention limit.
// An empty path selects the default root.
type Opener func(path string, maxSessions int) (*storage.Storage, error)

// PathSaver persists a newly selected storage path.
type PathSaver func(path string) error

// Handler serves envelope requests against one storage root at a time.
// SelectStoragePath swaps the root; in-flight calls finish on the old one.
type Handler struct {
	mu     sync.RWMutex
	store  *storage.Storage
	path   string // user-selected root; empty while the default is in use
	open   Opener
	save   PathSaver
	logger *log.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithOpener sets how SelectStoragePath opens a new root.
func WithOpener(open Opener) Option {
	return func(h *Handler) { h.open = open }
}

// WithPathSaver persists selected paths, e.g. to the preferences file.
func WithPathSaver(save PathSaver) Option {
	return func(h *Handler) { h.save = save }
}

// WithLogger routes handler failures to logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler serves requests against st. path is the user-selected root
// st was opened from, or "" for the default root.
func NewHandler(st *storage.Storage, path string, opts ...Option) *Handler {
	h := &Handler{
		store:  st,
		path:   path,
		logger: log.New(os.Stderr, "ipc: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.open == nil {
		logger := h.logger
		h.open = func(path string, maxSessions int) (*storage.Storage, error) {
			return storage.Open(path, storage.WithLogger(logger), storage.WithMaxSessions(maxSessions))
		}
	}
	return h
}

// Storage returns the storage currently being served.
func (h *Handler) Storage() *storage.Storage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store
}

// guard runs fn and converts a panic into a failed Response.
func (h *Handler) guard(op string, fn func() Response) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Printf("%s: recovered from panic: %v", op, r)
			resp = failure(fmt.Errorf("%s: internal error", op))
		}
	}()
	return fn()
}

// SelectStoragePath reopens storage at dir, keeping the retention limit,
// and persists the choice.
func (h *Handler) SelectStoragePath(dir string) Response {
	return h.guard("select-storage-path", func() Response {
		if dir == "" {
			return failure(ErrNoPath)
		}
		h.mu.Lock()
		defer h.mu.Unlock()

		st, err := h.open(dir, h.store.MaxSessions())
		if err != nil {
			h.logger.Printf("select-storage-path %s: %v", dir, err)
			return failure(err)
		}
		if h.save != nil {
			if err := h.save(dir); err != nil {
				h.logger.Printf("select-storage-path %s: saving preference: %v", dir, err)
				return failure(err)
			}
		}
		h.store, h.path = st, dir
		return Response{Success: true, StoragePath: dir}
	})
}

// SetMaxSessions changes the retention limit and sweeps immediately.
func (h *Handler) SetMaxSessions(n int) Response {
	return h.guard("set-max-sessions", func() Response {
		if err := h.Storage().SetMaxSessions(n); err != nil {
			h.logger.Printf("set-max-sessions %d: %v", n, err)
			return failure(err)
		}
		return Response{Success: true}
	})
}

// GetStoragePath reports the selected root, or DefaultLocationLabel.
func (h *Handler) GetStoragePath() Response {
	return h.guard("get-storage-path", func() Response {
		h.mu.RLock()
		defer h.mu.RUnlock()
		isDefault := h.path == ""
		path := h.path
		if isDefault {
			path = DefaultLocationLabel
		}
		return Response{Success: true, StoragePath: path, IsDefault: &isDefault}
	})
}

func (h *Handler) StartSession(cfg session.Config) Response {
	return h.guard("start-session", func() Response {
		s, err := h.Storage().StartSession(cfg)
		if err != nil {
			h.logger.Printf("start-session: %v", err)
			return failure(err)
		}
		return Response{Success: true, Session: s}
	})
}

func (h *Handler) AddLogEntry(id string, entry session.LogEntry) Response {
	return h.guard("add-log-entry", func() Response {
		ok, err := h.Storage().AddLogEntry(id, entry)
		if err != nil {
			h.logger.Printf("add-log-entry %s: %v", id, err)
			return failure(err)
		}
		return Response{Success: ok}
	})
}

func (h *Handler) EndSession(id string) Response {
	return h.guard("end-session", func() Response {
		ok, err := h.Storage().EndSession(id)
		if err != nil {
			h.logger.Printf("end-session %s: %v", id, err)
			return failure(err)
		}
		return Response{Success: ok}
	})
}

func (h *Handler) Search(p storage.SearchParams) Response {
	return h.guard("search-sessions", func() Response {
		res := h.Storage().Search(p)
		return Response{Success: true, Results: &res}
	})
}

func (h *Handler) GetStats() Response {
	return h.guard("get-storage-stats", func() Response {
		stats, err := h.Storage().Stats()
		if err != nil {
			h.logger.Printf("get-storage-stats: %v", err)
			return failure(err)
		}
		return Response{Success: true, Stats: &stats}
	})
}

// GetSession returns one session record. A missing session is a failure
// with no error logged.
func (h *Handler) GetSession(id string) Response {
	return h.guard("get-session", func() Response {
		s, err := h.Storage().GetSession(id)
		if err != nil {
			h.logger.Printf("get-session %s: %v", id, err)
			return failure(err)
		}
		if s == nil {
			return failure(fmt.Errorf("session %s: %w", id, storage.ErrNotFound))
		}
		return Response{Success: true, Session: s}
	})
}
