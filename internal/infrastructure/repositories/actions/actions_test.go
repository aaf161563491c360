//go:build unit

package actions_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/actions"
	"github.com/rios0rios0/monorepo/test/domain/entitybuilders"
)

func settingsWithCommands(commands map[string]string) *entities.Settings {
	return &entities.Settings{
		Commands: commands,
		Clean:    entities.CleanSettings{Paths: []string{"dist", "coverage"}},
		Link:     entities.LinkSettings{Dir: "node_modules"},
	}
}

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	t.Run("should use the configured command for javascript projects", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithName("foo").BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"build": "npm run build --if-present"}),
			Args:     []string{"--verbose"},
		}

		// when
		command := actions.ResolveCommand(entities.OperationBuild, project, opts)

		// then
		assert.Equal(t, "npm run build --if-present --verbose", command)
	})

	t.Run("should substitute the script name for run", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithScript("e2e", "playwright test").BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"run": "npm run {script}"}),
			Script:   "e2e",
		}

		// when
		command := actions.ResolveCommand(entities.OperationRun, project, opts)

		// then
		assert.Equal(t, "npm run e2e", command)
	})

	t.Run("should return nothing for run when the project lacks the script", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"run": "npm run {script}"}),
			Script:   "e2e",
		}

		// when
		command := actions.ResolveCommand(entities.OperationRun, project, opts)

		// then
		assert.Empty(t, command)
	})

	t.Run("should run the declared script for non-javascript projects", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().
			WithKind(entities.KindPython).
			WithScript("test", "pytest -q").
			BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"test": "npm test"}),
		}

		// when
		command := actions.ResolveCommand(entities.OperationTest, project, opts)

		// then
		assert.Equal(t, "pytest -q", command)
	})
}

func TestScriptActionExecute(t *testing.T) {
	t.Parallel()

	t.Run("should capture the output of a successful command", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithName("foo").WithPath(t.TempDir()).BuildProject()
		action := actions.NewScriptAction(entities.OperationBuild)
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"build": "echo built $MONOREPO_PROJECT_NAME"}),
		}

		// when
		outcome := action.Execute(context.Background(), project, opts)

		// then
		require.NoError(t, outcome.Err)
		assert.Equal(t, "built foo\n", outcome.Output)
	})

	t.Run("should report a failure when the command exits non-zero", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithPath(t.TempDir()).BuildProject()
		action := actions.NewScriptAction(entities.OperationTest)
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(map[string]string{"test": "echo boom; exit 3"}),
		}

		// when
		outcome := action.Execute(context.Background(), project, opts)

		// then
		require.Error(t, outcome.Err)
		assert.Contains(t, outcome.Output, "boom")
	})

	t.Run("should succeed without running anything when no command is configured", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithPath(t.TempDir()).BuildProject()
		action := actions.NewScriptAction(entities.OperationLint)
		opts := repositories.ActionOptions{Settings: settingsWithCommands(nil)}

		// when
		outcome := action.Execute(context.Background(), project, opts)

		// then
		require.NoError(t, outcome.Err)
		assert.Empty(t, outcome.Output)
	})

	t.Run("should fail when the context is already cancelled", func(t *testing.T) {
		t.Parallel()

		// given
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		project := entitybuilders.NewProjectBuilder().WithPath(t.TempDir()).BuildProject()
		action := actions.NewScriptAction(entities.OperationBuild)
		opts := repositories.ActionOptions{Settings: settingsWithCommands(map[string]string{"build": "sleep 5"})}

		// when
		outcome := action.Execute(ctx, project, opts)

		// then
		require.ErrorIs(t, outcome.Err, context.Canceled)
	})
}

func TestCleanActionExecute(t *testing.T) {
	t.Parallel()

	t.Run("should remove configured paths and ignore missing ones", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/repo/packages/foo/dist/index.js", []byte("x"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/repo/packages/foo/src/index.ts", []byte("x"), 0o644))
		project := entitybuilders.NewProjectBuilder().WithPath("/repo/packages/foo").BuildProject()
		action := actions.NewCleanAction(fs)

		// when
		outcome := action.Execute(context.Background(), project, repositories.ActionOptions{
			Settings: settingsWithCommands(nil),
		})

		// then
		require.NoError(t, outcome.Err)
		assert.Equal(t, "removed dist", outcome.Output)
		distExists, _ := afero.Exists(fs, "/repo/packages/foo/dist")
		srcExists, _ := afero.Exists(fs, "/repo/packages/foo/src/index.ts")
		assert.False(t, distExists)
		assert.True(t, srcExists)
	})

	t.Run("should refuse paths escaping the project directory", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		project := entitybuilders.NewProjectBuilder().WithPath("/repo/packages/foo").BuildProject()
		settings := settingsWithCommands(nil)
		settings.Clean.Paths = []string{"../bar"}
		action := actions.NewCleanAction(fs)

		// when
		outcome := action.Execute(context.Background(), project, repositories.ActionOptions{Settings: settings})

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, outcome.Err, &cfgErr)
	})
}

func TestBootstrapAndUnlink(t *testing.T) {
	t.Parallel()

	t.Run("should link in-set dependencies and remove the links on unlink", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		fooDir := filepath.Join(root, "foo")
		barDir := filepath.Join(root, "bar")
		require.NoError(t, os.MkdirAll(fooDir, 0o755))
		require.NoError(t, os.MkdirAll(barDir, 0o755))
		foo := entitybuilders.NewProjectBuilder().WithName("@acme/foo").WithPath(fooDir).BuildProject()
		bar := entitybuilders.NewProjectBuilder().
			WithName("bar").
			WithPath(barDir).
			WithDependencies("@acme/foo", "lodash").
			BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(nil),
			Set:      []*entities.Project{foo, bar},
		}
		fs := afero.NewOsFs()
		link := filepath.Join(barDir, "node_modules", "@acme", "foo")

		// when
		bootstrap := actions.NewBootstrapAction(fs).Execute(context.Background(), bar, opts)

		// then
		require.NoError(t, bootstrap.Err)
		assert.Equal(t, "linked @acme/foo", bootstrap.Output)
		target, err := os.Readlink(link)
		require.NoError(t, err)
		assert.Equal(t, fooDir, target)

		// when
		unlink := actions.NewUnlinkAction(fs).Execute(context.Background(), bar, opts)

		// then
		require.NoError(t, unlink.Err)
		assert.Equal(t, "unlinked @acme/foo", unlink.Output)
		_, statErr := os.Lstat(link)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should fail on a filesystem without symlink support", func(t *testing.T) {
		t.Parallel()

		// given
		foo := entitybuilders.NewProjectBuilder().WithName("foo").WithPath("/repo/foo").BuildProject()
		bar := entitybuilders.NewProjectBuilder().WithName("bar").WithPath("/repo/bar").
			WithDependencies("foo").BuildProject()
		opts := repositories.ActionOptions{
			Settings: settingsWithCommands(nil),
			Set:      []*entities.Project{foo, bar},
		}

		// when
		outcome := actions.NewBootstrapAction(afero.NewMemMapFs()).Execute(context.Background(), bar, opts)

		// then
		require.Error(t, outcome.Err)
	})
}
