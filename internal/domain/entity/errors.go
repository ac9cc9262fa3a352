package entity

import "errors"

// Error kinds surfaced by the leave workflow. Callers classify with errors.Is.
var (
	// ErrValidation is returned for malformed input; nothing is written
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a date range overlaps another live request of the same employee
	ErrConflict = errors.New("leave period conflict")

	// ErrNotFound is returned for an unknown request or employee
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an action is attempted from a status that does not allow it
	ErrInvalidState = errors.New("invalid request state")

	// ErrInsufficientBalance is returned when a debit would take a balance below zero
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)
