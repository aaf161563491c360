package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// PublisherFactory is a constructor function that creates a PublisherRepository from the settings.
type PublisherFactory func(settings *entities.Settings) domainRepos.PublisherRepository

// PublisherRegistry manages all registered registry publishers.
type PublisherRegistry struct {
	publishers map[string]PublisherFactory
}

// NewPublisherRegistry creates an empty publisher registry.
func NewPublisherRegistry() *PublisherRegistry {
	return &PublisherRegistry{
		publishers: make(map[string]PublisherFactory),
	}
}

// Register adds a publisher factory under the given name (e.g. "npm").
func (r *PublisherRegistry) Register(name string, factory PublisherFactory) {
	r.publishers[name] = factory
}

// Get returns a configured publisher instance for the given name.
func (r *PublisherRegistry) Get(name string, settings *entities.Settings) (domainRepos.PublisherRepository, error) {
	factory, ok := r.publishers[name]
	if !ok {
		return nil, entities.NewConfigurationError(
			fmt.Sprintf("unknown registry %q (known: %v)", name, r.Names()), nil,
		)
	}
	return factory(settings), nil
}

// Names returns the sorted list of registered publisher names.
func (r *PublisherRegistry) Names() []string {
	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
