package commands

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
)

// Status is the interface for the status command.
type Status interface {
	Execute(ctx context.Context, settings *entities.Settings, selection entities.Selection) ([]ProjectStatus, error)
}

// ProjectStatus describes one project: its in-set dependencies, the version the configured bump
// would release, and its uncommitted files.
type ProjectStatus struct {
	Project      *entities.Project
	Dependencies []string
	Dependents   []string
	NextVersion  string
	Changed      []string // paths relative to the repository root
	Tracked      bool     // false when the monorepo is not a git repository
}

// StatusCommand reports the state of every selected project.
type StatusCommand struct {
	projects   repositories.ProjectRepository
	vcsFactory infraRepos.VCSFactory
}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand(projects repositories.ProjectRepository, vcsFactory infraRepos.VCSFactory) *StatusCommand {
	return &StatusCommand{projects: projects, vcsFactory: vcsFactory}
}

// Execute returns one status per selected project, in discovery order.
func (it *StatusCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	selection entities.Selection,
) ([]ProjectStatus, error) {
	selected, err := selectProjects(ctx, it.projects, settings, selection)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Warn("Nothing found")
		return nil, nil
	}

	changed, tracked := it.changedFiles(ctx, settings)
	graph := entities.NewDependencyGraph(selected)
	statuses := make([]ProjectStatus, 0, len(selected))
	for _, p := range selected {
		next, bumpErr := entities.NextVersion(p.Version, entities.Bump(settings.Release.Bump), settings.Release.Preid)
		if bumpErr != nil {
			logger.Debugf("[%s] Cannot compute the next version: %v", p.Name, bumpErr)
		}
		statuses = append(statuses, ProjectStatus{
			Project:      p,
			Dependencies: entities.ProjectNames(graph.Dependencies(p.Name)),
			Dependents:   entities.ProjectNames(graph.Dependents(p.Name)),
			NextVersion:  next,
			Changed:      underFolder(changed, p.Folder),
			Tracked:      tracked,
		})
	}
	return statuses, nil
}

func (it *StatusCommand) changedFiles(ctx context.Context, settings *entities.Settings) ([]string, bool) {
	vcs, err := it.vcsFactory(settings)
	if err != nil {
		logger.Warnf("Not reporting changes: %v", err)
		return nil, false
	}
	files, err := vcs.ChangedFiles(ctx)
	if err != nil {
		logger.Warnf("Not reporting changes: %v", err)
		return nil, false
	}
	return files, true
}

// underFolder keeps the slash-separated paths inside folder. An empty folder is the root project
// and keeps everything.
func underFolder(files []string, folder string) []string {
	var out []string
	for _, f := range files {
		if folder == "" || folder == "." || strings.HasPrefix(f, folder+"/") {
			out = append(out, f)
		}
	}
	return out
}
