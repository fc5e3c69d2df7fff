package repository

import "errors"

var (
	// ErrNotFound is returned when a requested document doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the store cannot be reached or fails a call
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidInput is returned when a document cannot be encoded or decoded
	ErrInvalidInput = errors.New("invalid input")
)
