package repositories

import (
	"fmt"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// ActionRegistry manages the per-project action of every operation.
type ActionRegistry struct {
	actions map[entities.Operation]domainRepos.ActionRepository
}

// NewActionRegistry creates an empty action registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		actions: make(map[entities.Operation]domainRepos.ActionRepository),
	}
}

// Register adds an action under its operation, replacing any previous one.
func (r *ActionRegistry) Register(a domainRepos.ActionRepository) {
	r.actions[a.Operation()] = a
}

// Get returns the action of the given operation.
func (r *ActionRegistry) Get(op entities.Operation) (domainRepos.ActionRepository, error) {
	action, ok := r.actions[op]
	if !ok {
		return nil, entities.NewConfigurationError(fmt.Sprintf("no action registered for %q", op), nil)
	}
	return action, nil
}

// Operations returns the registered operations.
func (r *ActionRegistry) Operations() []entities.Operation {
	ops := make([]entities.Operation, 0, len(r.actions))
	for op := range r.actions {
		ops = append(ops, op)
	}
	return ops
}
