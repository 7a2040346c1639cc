package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the record changed since it was read.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrStorage wraps every failure of the underlying store.
	ErrStorage = errors.New("storage error")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
