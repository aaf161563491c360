//go:build unit

package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	gh "github.com/google/go-github/v66/github"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/monorepo/test/domain/entitybuilders"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *gh.Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := gh.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	client.UploadURL = base
	return client
}

func TestPublisherRepositoryPublish(t *testing.T) {
	t.Parallel()

	t.Run("should create a release with the changelog section when none exists", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		dir := "/repo/packages/foo"
		changelog := "# Changelog\n\n## [Unreleased]\n\n## [1.0.1] - 2026-01-01\n\n### Fixed\n\n- fixed a bug\n\n## [1.0.0] - 2025-12-01\n"
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "CHANGELOG.md"), []byte(changelog), 0o644))
		project := entitybuilders.NewProjectBuilder().WithName("foo").WithVersion("1.0.1").WithPath(dir).BuildProject()

		var created gh.RepositoryRelease
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/mono/releases/tags/foo@1.0.1", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})
		mux.HandleFunc("/repos/acme/mono/releases", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":1,"html_url":"https://github.com/acme/mono/releases/tag/foo@1.0.1"}`)
		})
		publisher := github.NewPublisherRepositoryWithClient(fs, newTestClient(t, mux), "acme", "mono")

		// when
		result, err := publisher.Publish(context.Background(), project, "latest")

		// then
		require.NoError(t, err)
		assert.Equal(t, repositories.StatusPublished, result.Status)
		assert.Equal(t, "foo@1.0.1", created.GetTagName())
		assert.Equal(t, "### Fixed\n\n- fixed a bug", created.GetBody())
		assert.False(t, created.GetPrerelease())
	})

	t.Run("should report already published when the release exists", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithName("foo").WithVersion("2.0.0-next.1").BuildProject()
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/mono/releases/tags/foo@2.0.0-next.1", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"id":7,"html_url":"https://example.com/r/7"}`)
		})
		mux.HandleFunc("/repos/acme/mono/releases", func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("release must not be created twice")
		})
		publisher := github.NewPublisherRepositoryWithClient(afero.NewMemMapFs(), newTestClient(t, mux), "acme", "mono")

		// when
		result, err := publisher.Publish(context.Background(), project, "latest")

		// then
		require.NoError(t, err)
		assert.Equal(t, repositories.StatusAlreadyPublished, result.Status)
		assert.Equal(t, "https://example.com/r/7", result.Detail)
	})

	t.Run("should fail with PublishError when the lookup fails", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().WithName("foo").BuildProject()
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/mono/releases/tags/foo@1.0.0", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		publisher := github.NewPublisherRepositoryWithClient(afero.NewMemMapFs(), newTestClient(t, mux), "acme", "mono")

		// when
		_, err := publisher.Publish(context.Background(), project, "latest")

		// then
		var publishErr *entities.PublishError
		require.ErrorAs(t, err, &publishErr)
		assert.Equal(t, "foo", publishErr.Project)
		assert.Equal(t, "github", publishErr.Registry)
	})

	t.Run("should fail when owner and repo are not configured", func(t *testing.T) {
		t.Parallel()

		// given
		project := entitybuilders.NewProjectBuilder().BuildProject()
		publisher := github.NewPublisherRepository(afero.NewMemMapFs(), &entities.Settings{})

		// when
		_, err := publisher.Publish(context.Background(), project, "latest")

		// then
		var publishErr *entities.PublishError
		require.ErrorAs(t, err, &publishErr)
	})
}

func TestPublisherRepositorySupports(t *testing.T) {
	t.Parallel()

	t.Run("should accept every manifest kind", func(t *testing.T) {
		t.Parallel()

		// given
		publisher := github.NewPublisherRepository(afero.NewMemMapFs(), &entities.Settings{})

		// when
		supported := publisher.Supports(entities.KindPython) && publisher.Supports(entities.KindTerraform) &&
			publisher.Supports(entities.KindJavaScript)

		// then
		assert.True(t, supported)
	})
}
