package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced session record does not exist.
var ErrNotFound = errors.New("session not found")

// ErrExists is returned by Create when a record with the same id is present.
var ErrExists = errors.New("session already exists")

// ReadError wraps an I/O failure while reading a record or the ledger.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError wraps an I/O failure while writing or deleting a record or the
// ledger (permissions, disk full).
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a persisted file exists but is not valid JSON
// for its expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
