//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

func TestNextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  string
		bump     entities.Bump
		preid    string
		expected string
	}{
		{name: "major", current: "1.2.3", bump: entities.BumpMajor, expected: "2.0.0"},
		{name: "minor", current: "1.2.3", bump: entities.BumpMinor, expected: "1.3.0"},
		{name: "patch", current: "1.2.3", bump: entities.BumpPatch, expected: "1.2.4"},
		{name: "patch of a prerelease", current: "1.2.4-next.0", bump: entities.BumpPatch, expected: "1.2.4"},
		{name: "premajor", current: "1.2.3", bump: entities.BumpPremajor, expected: "2.0.0-next.0"},
		{name: "preminor with preid", current: "1.2.3", bump: entities.BumpPreminor, preid: "beta", expected: "1.3.0-beta.0"},
		{name: "prepatch", current: "1.2.3", bump: entities.BumpPrepatch, preid: "rc", expected: "1.2.4-rc.0"},
		{name: "prerelease of a release", current: "1.2.3", bump: entities.BumpPrerelease, expected: "1.2.4-next.0"},
		{name: "prerelease increments", current: "1.0.0-beta.1", bump: entities.BumpPrerelease, preid: "beta", expected: "1.0.0-beta.2"},
		{name: "prerelease switches preid", current: "1.0.0-beta.1", bump: entities.BumpPrerelease, preid: "rc", expected: "1.0.0-rc.0"},
		{name: "explicit version", current: "1.2.3", bump: entities.Bump("3.0.0"), expected: "3.0.0"},
	}

	for _, tt := range tests {
		t.Run("should compute the "+tt.name+" version", func(t *testing.T) {
			t.Parallel()

			// when
			got, err := entities.NextVersion(tt.current, tt.bump, tt.preid)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("should reject an explicit version that is not greater", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NextVersion("2.0.0", entities.Bump("1.9.9"), "")

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should reject an unknown bump", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NextVersion("1.0.0", entities.Bump("huge"), "")

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should fail on a current version that is not semver", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NextVersion("one", entities.BumpPatch, "")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid current version "one"`)
	})
}

func TestRewriteRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  string
		expected string
	}{
		{name: "caret", current: "^1.0.0", expected: "^1.1.0"},
		{name: "tilde", current: "~1.0.0", expected: "~1.1.0"},
		{name: "exact", current: "1.0.0", expected: "1.1.0"},
		{name: "lower bound", current: ">=1.0.0", expected: ">=1.1.0"},
		{name: "workspace protocol", current: "workspace:^1.0.0", expected: "workspace:^1.1.0"},
		{name: "range not admitting the old version", current: "^2.0.0", expected: "^2.0.0"},
		{name: "wildcard", current: "*", expected: "*"},
		{name: "file reference", current: "file:../core", expected: "file:../core"},
	}

	for _, tt := range tests {
		t.Run("should handle a "+tt.name+" range", func(t *testing.T) {
			t.Parallel()

			// when
			got := entities.RewriteRange(tt.current, "1.0.0", "1.1.0")

			// then
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	t.Run("should compare with or without a v prefix", func(t *testing.T) {
		t.Parallel()

		// when
		lower := entities.CompareVersions("1.2.3", "v1.10.0")
		equal := entities.CompareVersions("v2.0.0", "2.0.0")

		// then
		assert.Equal(t, -1, lower)
		assert.Equal(t, 0, equal)
		assert.True(t, entities.IsValidVersion("1.0.0-rc.1"))
		assert.False(t, entities.IsValidVersion("latest"))
	})
}
