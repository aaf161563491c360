package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// List is the interface for the list command.
type List interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ListOptions) ([]*entities.Project, error)
}

// ListOptions holds runtime options for the list command.
type ListOptions struct {
	Selection entities.Selection
	Sorted    bool // topological order instead of discovery order
}

// ListCommand returns the selected projects.
type ListCommand struct {
	projects repositories.ProjectRepository
}

// NewListCommand creates a new ListCommand.
func NewListCommand(projects repositories.ProjectRepository) *ListCommand {
	return &ListCommand{projects: projects}
}

// Execute returns the selected projects, in discovery order unless opts.Sorted is set.
func (it *ListCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ListOptions,
) ([]*entities.Project, error) {
	selected, err := selectProjects(ctx, it.projects, settings, opts.Selection)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Warn("Nothing found")
		return nil, nil
	}
	if !opts.Sorted {
		return selected, nil
	}
	return entities.NewDependencyGraph(selected).TopologicalOrder()
}
