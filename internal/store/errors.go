package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrInvalidCategory = errors.New("invalid category name")
)

// PersistenceError reports a failed read or write against the backing
// repository.
type PersistenceError struct {
	Op       string
	Category string
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Category, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(op, category string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Category: category, Err: err}
}
