package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound            = errors.New("domain: not found")
	ErrReferentialConflict = errors.New("domain: referenced by another record")
	ErrInvalidTransition   = errors.New("domain: invalid transition")
	ErrInvalidInput        = errors.New("domain: invalid input")
)
