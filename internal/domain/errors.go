package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks input that fails domain validation.
	ErrInvalid = errors.New("invalid")
)
