package hr

import "errors"

var (
	ErrNotFound     = errors.New("hr: not found")
	ErrInvalidInput = errors.New("hr: invalid input")
	// ErrConflict marks an operation blocked by a lifecycle lock, e.g.
	// deleting a paid payroll or cancelling an approved leave.
	ErrConflict = errors.New("hr: conflict")
)
