//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// StubProjectRepository implements repositories.ProjectRepository with a fixed answer.
type StubProjectRepository struct {
	Projects      []*entities.Project
	DiscoverErr   error
	DiscoverCalls int
}

var _ repositories.ProjectRepository = (*StubProjectRepository)(nil)

func (r *StubProjectRepository) Discover(_ context.Context, _ *entities.Settings) ([]*entities.Project, error) {
	r.DiscoverCalls++
	return r.Projects, r.DiscoverErr
}
