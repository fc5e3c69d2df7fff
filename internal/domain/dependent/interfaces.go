package dependent

import (
	"context"

	"github.com/rpggio/officina/internal/domain/project"
)

// Projects is the slice of the project service the integrity logic needs.
type Projects interface {
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id project.ID) (*project.Project, error)
	SetReference(ctx context.Context, id project.ID, field project.RefField, value string) error
}
