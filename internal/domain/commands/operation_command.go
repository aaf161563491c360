package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// Operation is the interface for the per-project operation commands (bootstrap, build, clean,
// lint, test, run, unlink).
type Operation interface {
	Execute(ctx context.Context, settings *entities.Settings, opts OperationOptions) (*entities.RunReport, error)
}

// OperationOptions holds runtime options for one operation run.
type OperationOptions struct {
	Operation entities.Operation
	Selection entities.Selection
	Script    string   // script name, required by the run operation
	Args      []string // extra arguments passed to every project's command
	Bail      bool
	Stream    bool
	DryRun    bool
}

// OperationCommand discovers and selects projects, then hands them to the TaskRunner.
type OperationCommand struct {
	projects repositories.ProjectRepository
	runner   *TaskRunner
}

// NewOperationCommand creates a new OperationCommand.
func NewOperationCommand(projects repositories.ProjectRepository, runner *TaskRunner) *OperationCommand {
	return &OperationCommand{projects: projects, runner: runner}
}

// Execute runs the operation and returns the report. The error is non-nil when the operation
// could not run at all or when any project failed.
func (it *OperationCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts OperationOptions,
) (*entities.RunReport, error) {
	op := opts.Operation
	if op == entities.OperationRun && opts.Script == "" {
		return nil, entities.NewConfigurationError("the run operation needs a script name", nil)
	}

	selected, err := selectProjects(ctx, it.projects, settings, opts.Selection)
	if err != nil {
		return nil, err
	}
	if op == entities.OperationRun {
		selected = withScript(selected, opts.Script)
	}
	if len(selected) == 0 {
		logger.Warnf("[%s] Nothing found to run on", op)
		return entities.NewRunReport(op, nil), nil
	}

	if opts.DryRun {
		order, orderErr := entities.NewDependencyGraph(selected).OrderFor(op)
		if orderErr != nil {
			return nil, orderErr
		}
		for _, p := range order {
			logger.Infof("[%s] Would run on %s (%s)", op, p.Name, p.Folder)
		}
		return entities.NewRunReport(op, nil), nil
	}

	results, err := it.runner.Run(ctx, op, selected, TaskOptions{
		Concurrency: settings.EffectiveConcurrency(),
		Bail:        opts.Bail,
		Stream:      opts.Stream,
		Action: repositories.ActionOptions{
			Settings: settings,
			Script:   opts.Script,
			Args:     opts.Args,
		},
	})
	if err != nil {
		return nil, err
	}

	report := entities.NewRunReport(op, results)
	if report.HasFailures() {
		return report, fmt.Errorf("%s failed for %d project(s)", op, len(report.Failed()))
	}
	return report, nil
}

// withScript keeps the projects declaring the script, in order.
func withScript(projects []*entities.Project, script string) []*entities.Project {
	var out []*entities.Project
	for _, p := range projects {
		if p.HasScript(script) {
			out = append(out, p)
			continue
		}
		logger.Debugf("[run] %s has no %q script", p.Name, script)
	}
	return out
}
