package schedule

import "errors"

var (
	// ErrNotFound means no assignment exists with the given id.
	ErrNotFound = errors.New("assignment not found")

	// ErrForbidden means the actor is neither the assignee nor an admin.
	ErrForbidden = errors.New("not allowed to complete this assignment")
)
