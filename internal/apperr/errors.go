// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound marks a vault file or index row that does not exist.
	ErrNotFound = errors.New("not found")
)
