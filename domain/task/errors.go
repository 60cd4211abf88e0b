package task

import "errors"

// Sentinel errors returned by the repository.
var (
	// ErrNotFound is returned when no task row has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidSortField is returned for a sort field outside the sortable whitelist.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortDirection is returned for a direction other than asc or desc.
	ErrInvalidSortDirection = errors.New("invalid sort direction")

	// ErrInvalidPageRequest is returned for a negative page index or a non-positive page size.
	ErrInvalidPageRequest = errors.New("invalid page request")
)
