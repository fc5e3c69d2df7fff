package dependent

import "errors"

var (
	// ErrRecordNotFound indicates the quote or contract doesn't exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidInput indicates invalid record input.
	ErrInvalidInput = errors.New("invalid record input")
	// ErrPartialReferenceUpdate indicates the record write succeeded but the
	// project back-reference could not be updated.
	ErrPartialReferenceUpdate = errors.New("partial reference update")
	// ErrProjectAlreadyLinked indicates the project already references another
	// live record of the same kind.
	ErrProjectAlreadyLinked = errors.New("project already linked")
)
