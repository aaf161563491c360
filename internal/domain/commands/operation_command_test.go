//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	"github.com/rios0rios0/monorepo/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/monorepo/test/infrastructure/repositorydoubles"
)

func TestOperationCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should run the operation on the selected projects only", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"@acme/api", "@acme/web", "tools"}, nil)
		spy := &doubles.SpyActionRepository{Op: entities.OperationLint}
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{Projects: projects}, newRunner(spy))

		// when
		report, err := cmd.Execute(context.Background(), &entities.Settings{Concurrency: 1}, commands.OperationOptions{
			Operation: entities.OperationLint,
			Selection: entities.Selection{Projects: []string{"@acme/*"}, Ignore: []string{"@acme/web"}},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"@acme/api"}, spy.Started())
		assert.True(t, report.AllSucceeded())
	})

	t.Run("should return the report and an error when a project fails", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a", "b"}, map[string][]string{"b": {"a"}})
		spy := &doubles.SpyActionRepository{
			Op:       entities.OperationBuild,
			Outcomes: map[string]repositories.ActionOutcome{"a": {Err: errors.New("exit status 2")}},
		}
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{Projects: projects}, newRunner(spy))

		// when
		report, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationBuild,
		})

		// then
		require.Error(t, err)
		require.NotNil(t, report)
		assert.Equal(t, []string{"a"}, entities.ProjectNames(report.Failed()))
		assert.Equal(t, []string{"b"}, entities.ProjectNames(report.Skipped()))
	})

	t.Run("should only run projects declaring the script", func(t *testing.T) {
		t.Parallel()

		// given
		projects := []*entities.Project{
			entitybuilders.NewProjectBuilder().WithName("a").WithScript("dev", "vite").BuildProject(),
			entitybuilders.NewProjectBuilder().WithName("b").BuildProject(),
		}
		spy := &doubles.SpyActionRepository{Op: entities.OperationRun}
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{Projects: projects}, newRunner(spy))

		// when
		_, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationRun,
			Script:    "dev",
			Args:      []string{"--port", "3000"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, spy.Started())
		assert.Equal(t, "dev", spy.LastOptions().Script)
		assert.Equal(t, []string{"--port", "3000"}, spy.LastOptions().Args)
	})

	t.Run("should require a script name for the run operation", func(t *testing.T) {
		t.Parallel()

		// given
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{}, newRunner())

		// when
		_, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationRun,
		})

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should fail on an unknown literal project name", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a"}, nil)
		spy := &doubles.SpyActionRepository{Op: entities.OperationTest}
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{Projects: projects}, newRunner(spy))

		// when
		_, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationTest,
			Selection: entities.Selection{Projects: []string{"missing"}},
		})

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, spy.Started())
	})

	t.Run("should not run anything on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a", "b"}, nil)
		spy := &doubles.SpyActionRepository{Op: entities.OperationClean}
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{Projects: projects}, newRunner(spy))

		// when
		report, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationClean,
			DryRun:    true,
		})

		// then
		require.NoError(t, err)
		assert.Empty(t, report.Results)
		assert.Empty(t, spy.Started())
	})

	t.Run("should propagate a discovery failure", func(t *testing.T) {
		t.Parallel()

		// given
		discoverErr := entities.NewConfigurationError("duplicate project name \"a\"", nil)
		cmd := commands.NewOperationCommand(&doubles.StubProjectRepository{DiscoverErr: discoverErr}, newRunner())

		// when
		_, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.OperationOptions{
			Operation: entities.OperationBuild,
		})

		// then
		require.ErrorIs(t, err, discoverErr)
	})
}

func TestListCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should list projects in discovery order", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"app", "core"}, map[string][]string{"app": {"core"}})
		cmd := commands.NewListCommand(&doubles.StubProjectRepository{Projects: projects})

		// when
		listed, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.ListOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"app", "core"}, entities.ProjectNames(listed))
	})

	t.Run("should list projects in dependency order when sorted", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"app", "core"}, map[string][]string{"app": {"core"}})
		cmd := commands.NewListCommand(&doubles.StubProjectRepository{Projects: projects})

		// when
		listed, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.ListOptions{Sorted: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "app"}, entities.ProjectNames(listed))
	})

	t.Run("should return nothing without error when no project is found", func(t *testing.T) {
		t.Parallel()

		// given
		cmd := commands.NewListCommand(&doubles.StubProjectRepository{})

		// when
		listed, err := cmd.Execute(context.Background(), &entities.Settings{}, commands.ListOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

func TestStatusCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should report dependencies, next version and changed files per project", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"app", "core"}, map[string][]string{"app": {"core", "react"}})
		vcs := &doubles.SpyVCSRepository{Changed: []string{"README.md", "packages/core/src/index.ts"}}
		cmd := commands.NewStatusCommand(
			&doubles.StubProjectRepository{Projects: projects},
			func(_ *entities.Settings) (repositories.VCSRepository, error) { return vcs, nil },
		)
		settings := &entities.Settings{Release: entities.ReleaseSettings{Bump: "minor"}}

		// when
		statuses, err := cmd.Execute(context.Background(), settings, entities.Selection{})

		// then
		require.NoError(t, err)
		require.Len(t, statuses, 2)
		assert.Equal(t, []string{"core"}, statuses[0].Dependencies)
		assert.Empty(t, statuses[0].Changed)
		assert.Equal(t, "1.1.0", statuses[0].NextVersion)
		assert.Equal(t, []string{"app"}, statuses[1].Dependents)
		assert.Equal(t, []string{"packages/core/src/index.ts"}, statuses[1].Changed)
		assert.True(t, statuses[1].Tracked)
	})

	t.Run("should still report projects outside a git repository", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a"}, nil)
		cmd := commands.NewStatusCommand(
			&doubles.StubProjectRepository{Projects: projects},
			func(_ *entities.Settings) (repositories.VCSRepository, error) {
				return nil, &entities.VcsError{Op: "open", Err: errors.New("repository does not exist")}
			},
		)

		// when
		statuses, err := cmd.Execute(context.Background(), &entities.Settings{}, entities.Selection{})

		// then
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.False(t, statuses[0].Tracked)
	})
}

func TestUnderFolder(t *testing.T) {
	t.Parallel()

	t.Run("should not match a sibling folder sharing a prefix", func(t *testing.T) {
		t.Parallel()

		// given
		files := []string{"packages/ui/a.ts", "packages/ui-kit/b.ts"}

		// when
		got := commands.UnderFolder(files, "packages/ui")

		// then
		assert.Equal(t, []string{"packages/ui/a.ts"}, got)
	})

	t.Run("should keep everything for the root project", func(t *testing.T) {
		t.Parallel()

		// given
		files := []string{"a.go", "b/c.go"}

		// when
		got := commands.UnderFolder(files, ".")

		// then
		assert.Equal(t, files, got)
	})
}

func TestDependencyChanges(t *testing.T) {
	t.Parallel()

	t.Run("should keep only moved in-set dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithDependencies("a", "b", "lodash").BuildProject()
		changes := map[string]entities.VersionChange{
			"a": {From: "1.0.0", To: "1.1.0"},
			"b": {From: "2.0.0", To: "2.0.0"},
			"c": {From: "1.0.0", To: "2.0.0"},
		}

		// when
		got := commands.DependencyChanges(project, changes)

		// then
		assert.Equal(t, map[string]entities.VersionChange{"a": {From: "1.0.0", To: "1.1.0"}}, got)
	})
}

func TestCheckVersions(t *testing.T) {
	t.Parallel()

	t.Run("should name every project with an invalid version", func(t *testing.T) {
		t.Parallel()

		// given
		bad := entitybuilders.NewProjectBuilder().WithName("bad").WithVersion("one").BuildProject()
		good := entitybuilders.NewProjectBuilder().WithName("good").BuildProject()
		plan := entities.NewReleasePlan("p", []*entities.ReleaseItem{
			{Project: bad, FromVersion: "one", ToVersion: "1.0.0"},
			entities.NewReleaseItem(good, "1.0.1"),
		}, entities.ReleaseFlags{})

		// when
		err := commands.CheckVersions(context.Background(), plan)

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, `bad: current version "one" is not semver`)
		assert.NotContains(t, err.Error(), "good")
	})
}
