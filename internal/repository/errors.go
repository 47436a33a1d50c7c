package repository

import "errors"

var (
	// ErrNotFound is returned when a keyed lookup matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrClientSideEvaluation is returned when a specification needs
	// client-side evaluation and the policy forbids it.
	ErrClientSideEvaluation = errors.New("client side evaluation is not allowed")
)

// Rethrower transforms errors before a repository returns them, for example
// to map store failures onto an application error type.
type Rethrower func(error) error
