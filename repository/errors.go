package repository

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict means the document changed since it was read, or is
	// no longer in the status the write expected.
	ErrVersionConflict = errors.New("document was modified concurrently")
	ErrDuplicate       = errors.New("duplicate key")
)
