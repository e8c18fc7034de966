package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores on a unique constraint violation.
	ErrConflict = errors.New("conflict")
)
