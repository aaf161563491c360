//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// StubOperationCommand is a stub implementation of commands.Operation.
type StubOperationCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Report           *entities.RunReport
	LastSettings     *entities.Settings
	LastOpts         commands.OperationOptions
}

var _ commands.Operation = (*StubOperationCommand)(nil)

func (s *StubOperationCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.OperationOptions,
) (*entities.RunReport, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	if s.Report == nil {
		return entities.NewRunReport(opts.Operation, nil), s.ExecuteErr
	}
	return s.Report, s.ExecuteErr
}
