package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidRecord indicates a record failed validation before being written.
	ErrInvalidRecord = errors.New("invalid record")
)
