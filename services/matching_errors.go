package services

import "errors"

// Error taxonomy for the matching lifecycle. Handlers map these onto HTTP
// statuses; everything else bubbles up as a 500.
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidTransition   = errors.New("invalid transition for current status")
	ErrValidation          = errors.New("validation failed")
	ErrForbidden           = errors.New("caller is not a party to this matching")
	ErrConcurrencyConflict = errors.New("matching was modified concurrently")
	ErrDependencyFailure   = errors.New("dependency unavailable")
)
