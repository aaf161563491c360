package repositories

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// ProjectRepository discovers the sub-projects of the monorepo.
type ProjectRepository interface {
	// Discover returns the projects found under the configured directories, in discovery order.
	Discover(ctx context.Context, settings *entities.Settings) ([]*entities.Project, error)
}
