package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// selectProjects discovers the projects of the monorepo and narrows them to the selection.
func selectProjects(
	ctx context.Context,
	projects repositories.ProjectRepository,
	settings *entities.Settings,
	selection entities.Selection,
) ([]*entities.Project, error) {
	discovered, err := projects.Discover(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to discover projects: %w", err)
	}
	logger.Debugf("Discovered %d project(s) under %s", len(discovered), settings.Root)

	selected, err := selection.Apply(discovered)
	if err != nil {
		return nil, err
	}
	if len(selected) < len(discovered) {
		logger.Infof("Selected %d of %d project(s)", len(selected), len(discovered))
	}
	return selected, nil
}
