//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"slices"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// SpyPublisherRepository implements repositories.PublisherRepository as an in-memory registry:
// a version published once is reported as already published afterwards.
type SpyPublisherRepository struct {
	PublisherName string

	// Fail maps project names to the error their publish returns.
	Fail map[string]error

	// Registry holds "<name>@<version>" -> dist-tag of everything published.
	Registry map[string]string

	// Calls records the "<name>@<version>" of every Publish call.
	Calls []string

	// Kinds lists the supported manifest kinds; empty means every kind.
	Kinds []entities.ManifestKind
}

var _ repositories.PublisherRepository = (*SpyPublisherRepository)(nil)

func (p *SpyPublisherRepository) Name() string {
	if p.PublisherName == "" {
		return "spy"
	}
	return p.PublisherName
}

func (p *SpyPublisherRepository) Supports(kind entities.ManifestKind) bool {
	return len(p.Kinds) == 0 || slices.Contains(p.Kinds, kind)
}

func (p *SpyPublisherRepository) Publish(
	_ context.Context,
	project *entities.Project,
	distTag string,
) (repositories.PublishResult, error) {
	spec := project.Name + "@" + project.Version
	p.Calls = append(p.Calls, spec)
	if err := p.Fail[project.Name]; err != nil {
		return repositories.PublishResult{}, &entities.PublishError{Project: project.Name, Registry: p.Name(), Err: err}
	}
	if p.Registry == nil {
		p.Registry = make(map[string]string)
	}
	if _, ok := p.Registry[spec]; ok {
		p.Registry[spec] = distTag
		return repositories.PublishResult{Status: repositories.StatusAlreadyPublished, Detail: spec}, nil
	}
	p.Registry[spec] = distTag
	return repositories.PublishResult{Status: repositories.StatusPublished, Detail: spec}, nil
}
