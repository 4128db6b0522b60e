package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a user or project record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrExists is returned when creating a record whose key is already taken.
	ErrExists = errors.New("record already exists")

	// ErrInvalidName is returned for user and project names that cannot be used as keys.
	ErrInvalidName = errors.New("invalid name")
)
