package sqlite

import (
	"fmt"
	"strings"

	"github.com/rpggio/officina/internal/repository"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// unavailable tags a driver error so callers can classify it with errors.Is.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
}
