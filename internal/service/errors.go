package service

import "errors"

// Sentinel errors let the HTTP layer pick a status code. Services wrap them
// with a human-readable message: fmt.Errorf("%w: title cannot be empty", ErrInvalidInput).
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrWIPLimitReached = errors.New("wip limit reached")
)
