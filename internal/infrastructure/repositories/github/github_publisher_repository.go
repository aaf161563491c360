package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const (
	publisherName = "github"
	changelogFile = "CHANGELOG.md"
)

// PublisherRepository implements repositories.PublisherRepository by creating one GitHub release
// per project tag.
type PublisherRepository struct {
	fs     afero.Fs
	client *gh.Client
	owner  string
	repo   string
}

var _ repositories.PublisherRepository = (*PublisherRepository)(nil)

// NewPublisherRepository creates a GitHub releases publisher from the settings. Release notes are
// read from fs.
func NewPublisherRepository(fs afero.Fs, settings *entities.Settings) repositories.PublisherRepository {
	client := gh.NewClient(nil).WithAuthToken(settings.GitHub.Token)
	return NewPublisherRepositoryWithClient(fs, client, settings.GitHub.Owner, settings.GitHub.Repo)
}

// NewPublisherRepositoryWithClient creates a publisher on an existing client.
func NewPublisherRepositoryWithClient(fs afero.Fs, client *gh.Client, owner, repo string) *PublisherRepository {
	return &PublisherRepository{fs: fs, client: client, owner: owner, repo: repo}
}

func (p *PublisherRepository) Name() string { return publisherName }

// Supports accepts every kind since a release only needs the project tag.
func (p *PublisherRepository) Supports(_ entities.ManifestKind) bool { return true }

// Publish creates the release of project's current version. An existing release for the tag is
// reported as already published.
func (p *PublisherRepository) Publish(
	ctx context.Context,
	project *entities.Project,
	_ string,
) (repositories.PublishResult, error) {
	if p.owner == "" || p.repo == "" {
		return repositories.PublishResult{}, p.fail(project, errors.New("github.owner and github.repo must be set"))
	}
	tag := project.Name + "@" + project.Version

	existing, resp, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, tag)
	if err == nil {
		logger.Infof("[github] Release %s already exists: %s", tag, existing.GetHTMLURL())
		return repositories.PublishResult{
			Status: repositories.StatusAlreadyPublished,
			Detail: existing.GetHTMLURL(),
		}, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return repositories.PublishResult{}, p.fail(project, fmt.Errorf("failed to look up release %s: %w", tag, err))
	}

	release, _, err := p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &gh.RepositoryRelease{
		TagName:    gh.String(tag),
		Name:       gh.String(tag),
		Body:       gh.String(p.releaseNotes(project)),
		Prerelease: gh.Bool(semver.Prerelease("v"+project.Version) != ""),
	})
	if err != nil {
		return repositories.PublishResult{}, p.fail(project, fmt.Errorf("failed to create release %s: %w", tag, err))
	}
	logger.Infof("[github] Created release %s: %s", tag, release.GetHTMLURL())
	return repositories.PublishResult{Status: repositories.StatusPublished, Detail: release.GetHTMLURL()}, nil
}

func (p *PublisherRepository) fail(project *entities.Project, err error) error {
	return &entities.PublishError{Project: project.Name, Registry: publisherName, Err: err}
}

// releaseNotes returns the changelog section of the project version, or a one-line summary.
func (p *PublisherRepository) releaseNotes(project *entities.Project) string {
	content, err := afero.ReadFile(p.fs, filepath.Join(project.Path, changelogFile))
	if err == nil {
		if section := entities.ChangelogSection(string(content), project.Version); section != "" {
			return section
		}
	}
	return fmt.Sprintf("Release of %s %s.", project.Name, project.Version)
}
