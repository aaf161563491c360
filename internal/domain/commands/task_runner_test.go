//go:build unit

package commands_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
	"github.com/rios0rios0/monorepo/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/monorepo/test/infrastructure/repositorydoubles"
)

func newRunner(actions ...repositories.ActionRepository) *commands.TaskRunner {
	registry := infraRepos.NewActionRegistry()
	for _, a := range actions {
		registry.Register(a)
	}
	return commands.NewTaskRunner(registry)
}

func statuses(results []entities.TaskResult) map[string]entities.TaskStatus {
	out := make(map[string]entities.TaskStatus, len(results))
	for _, r := range results {
		out[r.Project.Name] = r.Status
	}
	return out
}

func TestTaskRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("should skip a dependent when its dependency fails", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B"}, map[string][]string{"B": {"A"}})
		spy := &doubles.SpyActionRepository{
			Op:       entities.OperationBuild,
			Outcomes: map[string]repositories.ActionOutcome{"A": {Err: errors.New("compile error")}},
		}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationBuild, projects, commands.TaskOptions{Concurrency: 4})

		// then
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, entities.TaskFailed, results[0].Status)
		assert.Equal(t, entities.TaskSkipped, results[1].Status)
		assert.NoError(t, results[1].Err)
		assert.Equal(t, []string{"A"}, spy.Started())

		var failure *entities.TaskFailure
		require.ErrorAs(t, results[0].Err, &failure)
		assert.Equal(t, "A", failure.Project)
		assert.Equal(t, entities.OperationBuild, failure.Operation)

		report := entities.NewRunReport(entities.OperationBuild, results)
		assert.Len(t, report.Failed(), 1)
		assert.Len(t, report.Skipped(), 1)
	})

	t.Run("should skip every transitive dependent of a failed project without starting it", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B", "C"}, map[string][]string{"B": {"A"}, "C": {"B"}})
		spy := &doubles.SpyActionRepository{
			Op:       entities.OperationBuild,
			Outcomes: map[string]repositories.ActionOutcome{"A": {Err: errors.New("compile error")}},
		}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationBuild, projects, commands.TaskOptions{Concurrency: 4})

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]entities.TaskStatus{
			"A": entities.TaskFailed,
			"B": entities.TaskSkipped,
			"C": entities.TaskSkipped,
		}, statuses(results))
		assert.Equal(t, "dependency B was skipped", results[2].Output)
		assert.Equal(t, []string{"A"}, spy.Started())
	})

	t.Run("should start a project only after its dependencies succeeded", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects(
			[]string{"app", "lib", "util"},
			map[string][]string{"app": {"lib"}, "lib": {"util"}},
		)
		spy := &doubles.SpyActionRepository{Op: entities.OperationBuild, Delay: 5 * time.Millisecond}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationBuild, projects, commands.TaskOptions{Concurrency: 3})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"start:util", "end:util", "start:lib", "end:lib", "start:app", "end:app"}, spy.Events())
		assert.Equal(t, []string{"app", "lib", "util"}, entities.ProjectNames([]*entities.Project{
			results[0].Project, results[1].Project, results[2].Project,
		}))
	})

	t.Run("should never exceed the concurrency limit", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a", "b", "c", "d", "e", "f"}, nil)
		spy := &doubles.SpyActionRepository{Op: entities.OperationLint, Delay: 10 * time.Millisecond}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationLint, projects, commands.TaskOptions{Concurrency: 2})

		// then
		require.NoError(t, err)
		assert.LessOrEqual(t, spy.MaxInFlight(), 2)
		assert.Len(t, spy.Started(), 6)
		for _, r := range results {
			assert.Equal(t, entities.TaskSuccess, r.Status)
		}
	})

	t.Run("should ignore dependency edges for order-independent operations", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B"}, map[string][]string{"B": {"A"}})
		spy := &doubles.SpyActionRepository{
			Op:       entities.OperationTest,
			Outcomes: map[string]repositories.ActionOutcome{"A": {Err: errors.New("assertion failed")}},
		}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationTest, projects, commands.TaskOptions{Concurrency: 2})

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]entities.TaskStatus{"A": entities.TaskFailed, "B": entities.TaskSuccess}, statuses(results))
	})

	t.Run("should fail on a cycle for an ordered operation", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B"}, map[string][]string{"A": {"B"}, "B": {"A"}})
		spy := &doubles.SpyActionRepository{Op: entities.OperationBuild}
		runner := newRunner(spy)

		// when
		_, err := runner.Run(context.Background(), entities.OperationBuild, projects, commands.TaskOptions{})

		// then
		var cycleErr *entities.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"A", "B"}, cycleErr.Members)
		assert.Empty(t, spy.Started())
	})

	t.Run("should run every project despite a cycle for an order-independent operation", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B"}, map[string][]string{"A": {"B"}, "B": {"A"}})
		spy := &doubles.SpyActionRepository{Op: entities.OperationLint}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationLint, projects, commands.TaskOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]entities.TaskStatus{"A": entities.TaskSuccess, "B": entities.TaskSuccess}, statuses(results))
	})

	t.Run("should skip everything as cancelled when the context is already done", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B", "C"}, nil)
		spy := &doubles.SpyActionRepository{Op: entities.OperationClean}
		runner := newRunner(spy)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		results, err := runner.Run(ctx, entities.OperationClean, projects, commands.TaskOptions{Concurrency: 2})

		// then
		require.NoError(t, err)
		assert.Empty(t, spy.Started())
		for _, r := range results {
			assert.Equal(t, entities.TaskSkipped, r.Status)
			assert.Equal(t, "cancelled", r.Output)
		}
	})

	t.Run("should not start new projects after a cancellation", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B", "C", "D"}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		spy := &doubles.SpyActionRepository{
			Op:        entities.OperationLint,
			OnExecute: func(_ context.Context, _ *entities.Project) { cancel() },
		}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(ctx, entities.OperationLint, projects, commands.TaskOptions{Concurrency: 1})

		// then
		require.NoError(t, err)
		require.Len(t, spy.Started(), 1)
		report := entities.NewRunReport(entities.OperationLint, results)
		assert.Len(t, report.Succeeded(), 1)
		assert.Len(t, report.Skipped(), 3)
	})

	t.Run("should stop starting projects after the first failure when bailing", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B", "C"}, nil)
		spy := &doubles.SpyActionRepository{
			Op: entities.OperationTest,
			Outcomes: map[string]repositories.ActionOutcome{
				"A": {Err: errors.New("boom")},
				"B": {Err: errors.New("boom")},
				"C": {Err: errors.New("boom")},
			},
		}
		runner := newRunner(spy)

		// when
		results, err := runner.Run(context.Background(), entities.OperationTest, projects,
			commands.TaskOptions{Concurrency: 1, Bail: true})

		// then
		require.NoError(t, err)
		report := entities.NewRunReport(entities.OperationTest, results)
		assert.Len(t, spy.Started(), 1)
		assert.Len(t, report.Failed(), 1)
		assert.Len(t, report.Skipped(), 2)
	})

	t.Run("should fail when no action handles the operation", func(t *testing.T) {
		t.Parallel()

		// given
		runner := newRunner()
		projects := entitybuilders.Projects([]string{"A"}, nil)

		// when
		_, err := runner.Run(context.Background(), entities.OperationUnlink, projects, commands.TaskOptions{})

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should pass the working set to the action", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"A", "B"}, map[string][]string{"B": {"A"}})
		spy := &doubles.SpyActionRepository{Op: entities.OperationBootstrap}
		runner := newRunner(spy)

		// when
		_, err := runner.Run(context.Background(), entities.OperationBootstrap, projects,
			commands.TaskOptions{Action: repositories.ActionOptions{Args: []string{"--frozen"}}})

		// then
		require.NoError(t, err)
		opts := spy.LastOptions()
		assert.Equal(t, []string{"A", "B"}, entities.ProjectNames(opts.Set))
		assert.True(t, slices.Equal([]string{"--frozen"}, opts.Args))
	})
}
