package repositories

import (
	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// ManifestRegistry manages all registered manifest implementations, keyed by manifest file name.
type ManifestRegistry struct {
	manifests map[string]domainRepos.ManifestRepository
}

// NewManifestRegistry creates an empty manifest registry.
func NewManifestRegistry() *ManifestRegistry {
	return &ManifestRegistry{
		manifests: make(map[string]domainRepos.ManifestRepository),
	}
}

// Register adds a manifest repository under its file name.
func (r *ManifestRegistry) Register(m domainRepos.ManifestRepository) {
	r.manifests[m.FileName()] = m
}

// Get returns the manifest repository for the given file name, or nil if not registered.
func (r *ManifestRegistry) Get(fileName string) domainRepos.ManifestRepository {
	return r.manifests[fileName]
}

// ForKind returns the manifest repository handling the given kind, or nil if not registered.
func (r *ManifestRegistry) ForKind(kind entities.ManifestKind) domainRepos.ManifestRepository {
	for _, m := range r.manifests {
		if m.Name() == kind {
			return m
		}
	}
	return nil
}

// FileNames returns the list of registered manifest file names.
func (r *ManifestRegistry) FileNames() []string {
	names := make([]string, 0, len(r.manifests))
	for name := range r.manifests {
		names = append(names, name)
	}
	return names
}
