package snippet

import "errors"

var (
	// ErrSnippetNotFound indicates the snippet doesn't exist.
	ErrSnippetNotFound = errors.New("snippet not found")
	// ErrInvalidInput indicates invalid snippet input.
	ErrInvalidInput = errors.New("invalid snippet input")
)
