//go:build unit

package python_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/python"
)

const fooPyproject = `[build-system]
requires = ["hatchling"]

[project]
name = "Acme_Foo"
version = "1.0.0" # bumped by release
requires-python = ">=3.10"
dependencies = [
    "acme-bar>=1.0.0",
    "requests==2.32.3",
]

[project.optional-dependencies]
dev = ["acme.baz==0.3.0", "pytest"]

[tool.monorepo]
private = true
scripts = { build = "python -m build" }
`

func TestManifestRepositoryRead(t *testing.T) {
	t.Parallel()

	t.Run("should read the project table and tool.monorepo settings", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "pyproject.toml")
		require.NoError(t, os.WriteFile(path, []byte(fooPyproject), 0o600))
		repo := python.NewManifestRepository(afero.NewOsFs())

		// when
		manifest, err := repo.Read(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.KindPython, manifest.Kind)
		assert.Equal(t, "acme-foo", manifest.Name)
		assert.Equal(t, "1.0.0", manifest.Version)
		assert.True(t, manifest.Private)
		assert.Equal(t, "python -m build", manifest.Scripts["build"])
		assert.Equal(t, ">=1.0.0", manifest.Dependencies["acme-bar"])
		assert.Equal(t, "==0.3.0", manifest.Dependencies["acme-baz"])
		assert.Contains(t, manifest.Dependencies, "pytest")
	})

	t.Run("should fail with ManifestError when the TOML is malformed", func(t *testing.T) {
		t.Parallel()

		// given
		data := []byte("[project\nname = 1")

		// when
		_, err := python.Parse("pyproject.toml", data)

		// then
		var manifestErr *entities.ManifestError
		require.ErrorAs(t, err, &manifestErr)
	})
}

func TestSetVersion(t *testing.T) {
	t.Parallel()

	t.Run("should bump the version and matching sibling requirements only", func(t *testing.T) {
		t.Parallel()

		// given
		changes := map[string]entities.VersionChange{
			"acme-bar": {From: "1.0.0", To: "1.1.0"},
			"acme-baz": {From: "0.3.0", To: "0.4.0"},
		}

		// when
		out, err := python.SetVersion([]byte(fooPyproject), "1.0.1", changes)

		// then
		require.NoError(t, err)
		content := string(out)
		assert.Contains(t, content, `version = "1.0.1" # bumped by release`)
		assert.Contains(t, content, `"acme-bar>=1.1.0"`)
		assert.Contains(t, content, `"acme.baz==0.4.0"`)
		assert.Contains(t, content, `"requests==2.32.3"`)
		assert.Contains(t, content, `requires-python = ">=3.10"`)
	})

	t.Run("should fail when the project table has no version", func(t *testing.T) {
		t.Parallel()

		// given
		data := []byte("[project]\nname = \"x\"\n")

		// when
		_, err := python.SetVersion(data, "1.0.0", nil)

		// then
		require.Error(t, err)
	})
}

func TestManifestRepositoryWriteVersion(t *testing.T) {
	t.Parallel()

	t.Run("should read and write through the given filesystem only", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		path := "/repo/packages/foo/pyproject.toml"
		require.NoError(t, afero.WriteFile(fs, path, []byte(fooPyproject), 0o644))
		repo := python.NewManifestRepository(fs)

		// when
		err := repo.WriteVersion(path, "1.1.0", nil)

		// then
		require.NoError(t, err)
		manifest, readErr := repo.Read(path)
		require.NoError(t, readErr)
		assert.Equal(t, "1.1.0", manifest.Version)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	t.Run("should lowercase and collapse separators", func(t *testing.T) {
		t.Parallel()

		// given
		name := "Foo__Bar.baz"

		// when
		normalized := python.NormalizeName(name)

		// then
		assert.Equal(t, "foo-bar-baz", normalized)
	})
}
