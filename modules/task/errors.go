package task

import "errors"

// Sentinel errors for task operations.
var (
	// ErrTaskNotFound is returned when no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidQuery is returned when a list request carries an unknown
	// sort field, a bad sort direction or out-of-range paging.
	ErrInvalidQuery = errors.New("invalid query")
)
