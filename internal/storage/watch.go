package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a record change seen by Watch.
type ChangeKind string

const (
	// ChangeWritten covers creation and every rewrite: updates land by
	// renaming a temp file over the record, which surfaces as a create.
	ChangeWritten ChangeKind = "written"
	ChangeRemoved ChangeKind = "removed"
)

// Change is one observed modification of a session record.
type Change struct {
	SessionID string
	Kind      ChangeKind
}

// Watch reports changes to session records under the root, from this or any
// other process, until ctx is cancelled. fn runs on the watching goroutine.
// Watcher errors are non-fatal and are logged.
func (st *Storage) Watch(ctx context.Context, fn func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(st.records.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c, ok := changeFor(event)
			if !ok {
				continue
			}
			fn(c)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			st.logger.Printf("watch: %v", err)
		}
	}
}

// changeFor maps a raw event to a record change, dropping temp files,
// non-record names and chmod-only events.
func changeFor(event fsnotify.Event) (Change, bool) {
	name := filepath.Base(event.Name)
	if isTemp(name) || !strings.HasSuffix(name, recordExt) {
		return Change{}, false
	}
	id := strings.TrimSuffix(name, recordExt)
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return Change{SessionID: id, Kind: ChangeRemoved}, true
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		return Change{SessionID: id, Kind: ChangeWritten}, true
	}
	return Change{}, false
}
