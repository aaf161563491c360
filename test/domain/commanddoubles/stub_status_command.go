//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// StubStatusCommand is a stub implementation of commands.Status.
type StubStatusCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Statuses         []commands.ProjectStatus
	LastSelection    entities.Selection
}

var _ commands.Status = (*StubStatusCommand)(nil)

func (s *StubStatusCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	selection entities.Selection,
) ([]commands.ProjectStatus, error) {
	s.ExecuteCallCount++
	s.LastSelection = selection
	return s.Statuses, s.ExecuteErr
}
