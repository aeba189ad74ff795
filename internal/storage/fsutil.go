package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// tempPrefix marks in-flight writes; enumeration and the watcher skip them.
const tempPrefix = ".tmp-"

// writeTemp writes data to a temp file next to path. A non-zero mtime is
// stamped onto the temp file so it survives the following rename or link.
func writeTemp(path string, data []byte, mtime time.Time) (tmpName string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix+"*")
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	tmpName = tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return "", &WriteError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if !mtime.IsZero() {
		if err = os.Chtimes(tmpName, mtime, mtime); err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
	}
	return tmpName, nil
}

// writeFileAtomic replaces path with data via temp file + os.Rename, so
// readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, mtime time.Time) error {
	tmpName, err := writeTemp(path, data, mtime)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}
