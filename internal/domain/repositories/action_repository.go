package repositories

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// ActionOptions carries the per-invocation options of a per-project action.
type ActionOptions struct {
	Settings *entities.Settings
	Script   string              // script name for the run operation
	Args     []string            // extra arguments appended to the command
	Set      []*entities.Project // working set, used to link sibling projects
}

// ActionOutcome is what a per-project action reports back to the runner.
type ActionOutcome struct {
	Output string
	Err    error
}

// ActionRepository is one per-project operation. The orchestrator treats it as opaque.
type ActionRepository interface {
	// Operation returns the operation implemented by this action.
	Operation() entities.Operation

	// Execute runs the operation for a single project. It must honour ctx cancellation.
	Execute(ctx context.Context, project *entities.Project, opts ActionOptions) ActionOutcome
}
