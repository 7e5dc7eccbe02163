package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not in the transition table
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidStatus is returned when a value is not a member of its status enum
	ErrInvalidStatus = errors.New("invalid status")
)
