package repositories

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// PublishStatus tells whether a publish call created something new.
type PublishStatus string

const (
	StatusPublished        PublishStatus = "published"
	StatusAlreadyPublished PublishStatus = "already_published"
)

// PublishResult is the outcome of a successful publish call.
type PublishResult struct {
	Status PublishStatus
	Detail string
}

// PublisherRepository publishes a project version to a registry. Publishing a version that
// already exists under the dist-tag is a no-op reported as StatusAlreadyPublished.
type PublisherRepository interface {
	Name() string
	// Supports reports whether the registry accepts projects of the given manifest kind.
	Supports(kind entities.ManifestKind) bool
	Publish(ctx context.Context, project *entities.Project, distTag string) (PublishResult, error)
}
