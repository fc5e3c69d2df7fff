package mcp

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, dependent.ErrPartialReferenceUpdate):
		return &APIError{Code: "PARTIAL_REFERENCE_UPDATE", Message: "record saved but project reference not updated", RecoveryHint: "Re-read the project before retrying"}
	case errors.Is(err, repository.ErrUnavailable):
		return &APIError{Code: "STORE_UNAVAILABLE", Message: "document store unavailable", RecoveryHint: "Try again later"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, dependent.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidReference),
		errors.Is(err, snippet.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput):
		apiErr := &APIError{Code: "INVALID_INPUT", Message: "invalid input"}
		var fields validation.Errors
		if errors.As(err, &fields) {
			apiErr.Details = fields
		}
		return apiErr
	case errors.Is(err, dependent.ErrProjectAlreadyLinked):
		return &APIError{Code: "PROJECT_ALREADY_LINKED", Message: "project already has a record of this kind", RecoveryHint: "Delete the existing record first"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check ID with list_projects"}
	case errors.Is(err, dependent.ErrRecordNotFound):
		return &APIError{Code: "RECORD_NOT_FOUND", Message: "record not found", RecoveryHint: "Check ID spelling"}
	case errors.Is(err, snippet.ErrSnippetNotFound):
		return &APIError{Code: "SNIPPET_NOT_FOUND", Message: "snippet not found", RecoveryHint: "Check ID with list_snippets"}
	default:
		return err
	}
}
