// Package store defines the typed failures every persistence adapter returns.
//
// Callers decide NotFound vs Internal with errors.Is and errors.As, never by
// matching message text.
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the tenant-scoped key.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a unique key already exists.
	ErrConflict = errors.New("store: conflict")
	// ErrStatusChanged is returned by compare-and-set transitions when the
	// row no longer holds the expected status.
	ErrStatusChanged = errors.New("store: status changed")
)

// ConstraintError reports a storage constraint the caller did not expect,
// such as a foreign key violation.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("store: constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }
