//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/test/domain/entitybuilders"
)

func TestReleasePlan(t *testing.T) {
	t.Parallel()

	t.Run("should default the dist tag and remote", func(t *testing.T) {
		t.Parallel()

		// when
		plan := entities.NewReleasePlan("id", nil, entities.ReleaseFlags{})

		// then
		assert.Equal(t, "latest", plan.DistTag)
		assert.Equal(t, "origin", plan.Remote)
		assert.Equal(t, entities.StatePlanned, plan.State)
		assert.False(t, plan.IsCommitted())
	})

	t.Run("should tag items by name and version and keep the project untouched", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithName("@acme/ui").WithVersion("1.0.0").BuildProject()

		// when
		item := entities.NewReleaseItem(project, "1.1.0")

		// then
		assert.Equal(t, "@acme/ui@1.1.0", item.Tag)
		assert.Equal(t, "1.0.0", item.FromVersion)
		assert.Equal(t, "1.1.0", item.Released().Version)
		assert.Equal(t, "1.0.0", project.Version)
	})

	t.Run("should list written files once in plan order", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a", "b"}, nil)
		a := entities.NewReleaseItem(projects[0], "1.0.1")
		a.Files = []string{"/repo/a/package.json", "/repo/package-lock.json"}
		b := entities.NewReleaseItem(projects[1], "1.0.1")
		b.Files = []string{"/repo/b/package.json", "/repo/package-lock.json"}
		plan := entities.NewReleasePlan("id", []*entities.ReleaseItem{a, b}, entities.ReleaseFlags{})

		// when
		files := plan.Files()

		// then
		assert.Equal(t, []string{"/repo/a/package.json", "/repo/package-lock.json", "/repo/b/package.json"}, files)
	})

	t.Run("should track commit, publication and failure", func(t *testing.T) {
		t.Parallel()

		// given
		projects := entitybuilders.Projects([]string{"a", "b"}, nil)
		plan := entities.NewReleasePlan("id", []*entities.ReleaseItem{
			entities.NewReleaseItem(projects[0], "2.0.0"),
			entities.NewReleaseItem(projects[1], "2.0.0"),
		}, entities.ReleaseFlags{})

		// when
		plan.Items[1].Committed = true
		plan.Items[1].Published = true
		plan.Fail(entities.StatePublished)

		// then
		assert.True(t, plan.IsCommitted())
		assert.Equal(t, []string{"b"}, plan.PublishedNames())
		assert.Equal(t, entities.StateFailed, plan.State)
		assert.Equal(t, entities.StatePublished, plan.FailedStage)
		assert.Equal(t, entities.VersionChange{From: "1.0.0", To: "2.0.0"}, plan.VersionChanges()["a"])
	})
}
