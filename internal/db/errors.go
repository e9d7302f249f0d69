package db

import "errors"

var (
	// ErrNotFound marks a missing student/event/department/snapshot.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks duplicate registrations (participation, username).
	ErrConflict = errors.New("conflict")
)
