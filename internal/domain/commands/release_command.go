package commands

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
)

// Release is the interface for the release command.
type Release interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ReleaseOptions) (*entities.ReleasePlan, error)
}

// ReleaseOptions holds runtime options for one release.
type ReleaseOptions struct {
	Selection entities.Selection
	Bump      string // named increment or explicit version; empty uses release.bump
	Preid     string // prerelease identifier; empty uses release.preid
	DryRun    bool
}

// ReleaseCommand plans a release of the selected projects and drives it through the release
// pipeline. The plan is returned even when a stage fails, so callers can report how far it got.
type ReleaseCommand struct {
	projects    repositories.ProjectRepository
	runner      *TaskRunner
	manifests   *infraRepos.ManifestRegistry
	publishers  *infraRepos.PublisherRegistry
	vcsFactory  infraRepos.VCSFactory
	lockFactory infraRepos.LockFactory
	reports     repositories.ReportRepository
	fs          afero.Fs
}

// NewReleaseCommand creates a new ReleaseCommand.
func NewReleaseCommand(
	projects repositories.ProjectRepository,
	runner *TaskRunner,
	manifests *infraRepos.ManifestRegistry,
	publishers *infraRepos.PublisherRegistry,
	vcsFactory infraRepos.VCSFactory,
	lockFactory infraRepos.LockFactory,
	reports repositories.ReportRepository,
	fs afero.Fs,
) *ReleaseCommand {
	return &ReleaseCommand{
		projects:    projects,
		runner:      runner,
		manifests:   manifests,
		publishers:  publishers,
		vcsFactory:  vcsFactory,
		lockFactory: lockFactory,
		reports:     reports,
		fs:          fs,
	}
}

// Execute releases the selected projects. An empty selection is a successful no-op.
func (it *ReleaseCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ReleaseOptions,
) (*entities.ReleasePlan, error) {
	selected, err := selectProjects(ctx, it.projects, settings, opts.Selection)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Warn("[release] Nothing found to release")
		return nil, nil
	}

	bump := opts.Bump
	if bump == "" {
		bump = settings.Release.Bump
	}
	preid := opts.Preid
	if preid == "" {
		preid = settings.Release.Preid
	}
	plan, err := PlanRelease(uuid.NewString(), selected, entities.Bump(bump), preid, settings.ReleaseFlags())
	if err != nil {
		return nil, err
	}
	logPlan(plan)
	if opts.DryRun {
		logger.Info("[release] Dry run, nothing was changed")
		return plan, nil
	}

	env, err := it.newEnv(settings, plan)
	if err != nil {
		return plan, err
	}
	return plan, it.drive(ctx, settings, plan, env, NewReleaseStages(env))
}

// drive runs the stages while holding the release lock and writes the report afterwards.
func (it *ReleaseCommand) drive(
	ctx context.Context,
	settings *entities.Settings,
	plan *entities.ReleasePlan,
	env ReleaseEnv,
	stages []ReleaseStage,
) error {
	defer func() {
		if releaseErr := env.Lock.Release(); releaseErr != nil {
			logger.Warnf("[release] Failed to release the lock: %v", releaseErr)
		}
	}()

	err := NewReleaseCoordinator(stages...).Execute(ctx, plan)
	it.writeReport(settings, plan)
	if err != nil {
		return err
	}
	logger.Infof("[release] Release %s is %s", plan.ID, plan.State)
	return nil
}

func (it *ReleaseCommand) newEnv(settings *entities.Settings, plan *entities.ReleasePlan) (ReleaseEnv, error) {
	env := ReleaseEnv{
		Settings:  settings,
		Fs:        it.fs,
		Runner:    it.runner,
		Manifests: it.manifests,
		Lock:      it.lockFactory(settings),
	}
	if plan.DoGit {
		vcs, err := it.vcsFactory(settings)
		if err != nil {
			return env, err
		}
		env.VCS = vcs
	}
	if plan.DoPublish {
		publisher, err := it.publishers.Get(settings.Release.Registry, settings)
		if err != nil {
			return env, err
		}
		env.Publisher = publisher
	}
	return env, nil
}

func (it *ReleaseCommand) writeReport(settings *entities.Settings, plan *entities.ReleasePlan) {
	if settings.Release.ReportFile == "" {
		return
	}
	path := settings.Release.ReportFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(settings.Root, path)
	}
	if err := it.reports.Write(path, plan); err != nil {
		logger.Warnf("[release] Failed to write the report: %v", err)
		return
	}
	logger.Infof("[release] Report written to %s", path)
}

// PlanRelease builds the plan moving every project to its bumped version, in dependency order so
// each manifest is written after the manifests of its dependencies.
func PlanRelease(
	id string,
	projects []*entities.Project,
	bump entities.Bump,
	preid string,
	flags entities.ReleaseFlags,
) (*entities.ReleasePlan, error) {
	order, err := entities.NewDependencyGraph(projects).TopologicalOrder()
	if err != nil {
		return nil, err
	}

	items := make([]*entities.ReleaseItem, 0, len(order))
	for _, p := range order {
		next, bumpErr := entities.NextVersion(p.Version, bump, preid)
		if bumpErr != nil {
			return nil, entities.NewConfigurationError("cannot bump "+p.Name, bumpErr)
		}
		items = append(items, entities.NewReleaseItem(p, next))
	}
	return entities.NewReleasePlan(id, items, flags), nil
}

func logPlan(plan *entities.ReleasePlan) {
	logger.Infof("[release] Plan %s (dist-tag %q, git=%t, push=%t, publish=%t)",
		plan.ID, plan.DistTag, plan.DoGit, plan.DoPush, plan.DoPublish)
	for _, item := range plan.Items {
		private := ""
		if item.Project.Private {
			private = " (private)"
		}
		logger.Infof("[release]   %s: %s -> %s%s", item.Project.Name, item.FromVersion, item.ToVersion, private)
	}
}
