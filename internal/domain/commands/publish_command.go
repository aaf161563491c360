package commands

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// Publish is the interface for the publish command.
type Publish interface {
	Execute(ctx context.Context, settings *entities.Settings, opts PublishOptions) (*entities.ReleasePlan, error)
}

// PublishOptions holds runtime options for the publish command.
type PublishOptions struct {
	Selection entities.Selection
	DistTag   string // empty uses release.dist_tag
	DryRun    bool
}

// PublishCommand publishes the current version of every selected project without bumping,
// committing or pushing. Registries skip what they already hold, so re-running it after a partial
// failure only publishes the remainder.
type PublishCommand struct {
	release *ReleaseCommand
}

// NewPublishCommand creates a new PublishCommand sharing the release collaborators.
func NewPublishCommand(release *ReleaseCommand) *PublishCommand {
	return &PublishCommand{release: release}
}

// Execute publishes the selected projects. An empty selection is a successful no-op.
func (it *PublishCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts PublishOptions,
) (*entities.ReleasePlan, error) {
	selected, err := selectProjects(ctx, it.release.projects, settings, opts.Selection)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Warn("[publish] Nothing found to publish")
		return nil, nil
	}

	order, err := entities.NewDependencyGraph(selected).TopologicalOrder()
	if err != nil {
		return nil, err
	}
	items := make([]*entities.ReleaseItem, 0, len(order))
	for _, p := range order {
		items = append(items, entities.NewReleaseItem(p, p.Version))
	}
	flags := entities.ReleaseFlags{
		DoPublish: true,
		DistTag:   settings.Release.DistTag,
		Remote:    settings.Release.Remote,
		Message:   settings.Release.Message,
	}
	if opts.DistTag != "" {
		flags.DistTag = opts.DistTag
	}
	plan := entities.NewReleasePlan(uuid.NewString(), items, flags)
	logPlan(plan)
	if opts.DryRun {
		logger.Info("[publish] Dry run, nothing was published")
		return plan, nil
	}

	env, err := it.release.newEnv(settings, plan)
	if err != nil {
		return plan, err
	}
	stages := []ReleaseStage{
		&PreconditionStage{Checks: DefaultPreconditions(env)},
		NewPublishStage(env),
		&doneStage{},
	}
	return plan, it.release.drive(ctx, settings, plan, env, stages)
}
