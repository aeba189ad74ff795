package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fakeyudi/focus/internal/session"
	"github.com/fakeyudi/focus/internal/storage"
)

// Method names accepted by Serve.
const (
	MethodSelectStoragePath = "select-storage-path"
	MethodSetMaxSessions    = "set-max-sessions"
	MethodGetStoragePath    = "get-storage-path"
	MethodStartSession      = "start-session"
	MethodAddLogEntry       = "add-log-entry"
	MethodEndSession        = "end-session"
	MethodSearchSessions    = "search-sessions"
	MethodGetStorageStats   = "get-storage-stats"
	MethodGetSession        = "get-session"
)

// maxLineSize bounds a single request line.
const maxLineSize = 1024 * 1024

// Request is one line of input to Serve.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// reply is one line of output: the request id followed by the envelope.
type reply struct {
	ID json.RawMessage `json:"id,omitempty"`
	Response
}

type addLogEntryParams struct {
	SessionID string           `json:"sessionId"`
	Entry     session.LogEntry `json:"entry"`
}

// Dispatch routes a decoded request to the matching handler method.
func (h *Handler) Dispatch(req Request) Response {
	return h.guard(req.Method, func() Response {
		switch req.Method {
		case MethodSelectStoragePath:
			var dir string
			if err := decodeParams(req.Params, &dir); err != nil {
				return failure(err)
			}
			return h.SelectStoragePath(dir)
		case MethodSetMaxSessions:
			var n int
			if err := decodeParams(req.Params, &n); err != nil {
				return failure(err)
			}
			return h.SetMaxSessions(n)
		case MethodGetStoragePath:
			return h.GetStoragePath()
		case MethodStartSession:
			var cfg session.Config
			if err := decodeParams(req.Params, &cfg); err != nil {
				return failure(err)
			}
			return h.StartSession(cfg)
		case MethodAddLogEntry:
			var p addLogEntryParams
			if err := decodeParams(req.Params, &p); err != nil {
				return failure(err)
			}
			return h.AddLogEntry(p.SessionID, p.Entry)
		case MethodEndSession:
			var id string
			if err := decodeParams(req.Params, &id); err != nil {
				return failure(err)
			}
			return h.EndSession(id)
		case MethodSearchSessions:
			var p storage.SearchParams
			if err := decodeParams(req.Params, &p); err != nil {
				return failure(err)
			}
			return h.Search(p)
		case MethodGetStorageStats:
			return h.GetStats()
		case MethodGetSession:
			var id string
			if err := decodeParams(req.Params, &id); err != nil {
				return failure(err)
			}
			return h.GetSession(id)
		default:
			return failure(fmt.Errorf("unknown method %q", req.Method))
		}
	})
}

// decodeParams unmarshals raw into v. Absent params leave v at its zero value.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// Serve reads one JSON request per line from r and writes one JSON reply per
// line to w, in order. It returns nil at EOF, ctx.Err() when ctx is
// cancelled, or the first read or write error.
func (h *Handler) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// lines also closes when the reader stops on cancellation.
				if err := ctx.Err(); err != nil {
					return err
				}
				return <-readErr
			}
			if len(line) == 0 {
				continue
			}
			var req Request
			var out reply
			if err := json.Unmarshal(line, &req); err != nil {
				out.Response = failure(fmt.Errorf("malformed request: %w", err))
			} else {
				out = reply{ID: req.ID, Response: h.Dispatch(req)}
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("writing reply: %w", err)
			}
		}
	}
}
