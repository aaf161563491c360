package npm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const (
	publisherName = "npm"
	notFoundCode  = "E404"
)

// CommandRunner runs the npm binary with args inside dir and returns its combined output.
type CommandRunner func(ctx context.Context, dir string, args ...string) (string, error)

// PublisherRepository implements repositories.PublisherRepository with the npm CLI. A version
// already on the registry is never published again; only its dist-tag is moved when needed.
type PublisherRepository struct {
	run      CommandRunner
	registry string
}

var _ repositories.PublisherRepository = (*PublisherRepository)(nil)

// NewPublisherRepository creates an npm publisher using the npm binary on PATH.
func NewPublisherRepository(settings *entities.Settings) repositories.PublisherRepository {
	return NewPublisherRepositoryWithRunner(execNpm, settings.Release.RegistryURL)
}

// NewPublisherRepositoryWithRunner creates an npm publisher with a custom runner and an optional
// registry URL.
func NewPublisherRepositoryWithRunner(run CommandRunner, registry string) *PublisherRepository {
	return &PublisherRepository{run: run, registry: registry}
}

func (p *PublisherRepository) Name() string { return publisherName }

// Supports accepts JavaScript packages only.
func (p *PublisherRepository) Supports(kind entities.ManifestKind) bool {
	return kind == entities.KindJavaScript
}

// Publish publishes project's current version under distTag.
func (p *PublisherRepository) Publish(
	ctx context.Context,
	project *entities.Project,
	distTag string,
) (repositories.PublishResult, error) {
	spec := project.Name + "@" + project.Version

	exists, err := p.versionExists(ctx, project, spec)
	if err != nil {
		return repositories.PublishResult{}, p.fail(project, err)
	}
	if exists {
		return p.ensureDistTag(ctx, project, spec, distTag)
	}

	output, err := p.run(ctx, project.Path, p.withRegistry("publish", "--tag", distTag)...)
	if err != nil {
		return repositories.PublishResult{}, p.fail(project, fmt.Errorf("npm publish: %w\n%s", err, output))
	}
	logger.Infof("[npm] Published %s with tag %q", spec, distTag)
	return repositories.PublishResult{Status: repositories.StatusPublished, Detail: spec}, nil
}

func (p *PublisherRepository) versionExists(ctx context.Context, project *entities.Project, spec string) (bool, error) {
	output, err := p.run(ctx, project.Path, p.withRegistry("view", spec, "version", "--json")...)
	if err != nil {
		if strings.Contains(output, notFoundCode) {
			return false, nil
		}
		return false, fmt.Errorf("npm view %s: %w\n%s", spec, err, output)
	}
	return strings.TrimSpace(output) != "", nil
}

func (p *PublisherRepository) ensureDistTag(
	ctx context.Context,
	project *entities.Project,
	spec, distTag string,
) (repositories.PublishResult, error) {
	output, err := p.run(ctx, project.Path, p.withRegistry("view", project.Name, "dist-tags", "--json")...)
	if err != nil {
		return repositories.PublishResult{}, p.fail(project, fmt.Errorf("npm view dist-tags: %w\n%s", err, output))
	}
	if distTagVersion(output, distTag) == project.Version {
		logger.Infof("[npm] %s is already published with tag %q", spec, distTag)
		return repositories.PublishResult{Status: repositories.StatusAlreadyPublished, Detail: spec}, nil
	}

	if output, err = p.run(ctx, project.Path, p.withRegistry("dist-tag", "add", spec, distTag)...); err != nil {
		return repositories.PublishResult{}, p.fail(project, fmt.Errorf("npm dist-tag add: %w\n%s", err, output))
	}
	logger.Infof("[npm] %s already published, moved tag %q to it", spec, distTag)
	return repositories.PublishResult{Status: repositories.StatusAlreadyPublished, Detail: spec}, nil
}

// distTagVersion returns the version a dist-tag points at in `npm view <name> dist-tags --json`.
func distTagVersion(distTags, tag string) string {
	version := ""
	gjson.Parse(distTags).ForEach(func(key, value gjson.Result) bool {
		if key.String() == tag {
			version = value.String()
			return false
		}
		return true
	})
	return version
}

func (p *PublisherRepository) withRegistry(args ...string) []string {
	if p.registry == "" {
		return args
	}
	return append(args, "--registry", p.registry)
}

func (p *PublisherRepository) fail(project *entities.Project, err error) error {
	return &entities.PublishError{Project: project.Name, Registry: publisherName, Err: err}
}

func execNpm(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), fmt.Errorf("exit code %d", exitErr.ExitCode())
		}
		return string(output), err
	}
	return string(output), nil
}
