package repositories

import "github.com/rios0rios0/monorepo/internal/domain/entities"

// ManifestRepository reads and updates one kind of project manifest (package.json,
// pyproject.toml, project.hcl).
type ManifestRepository interface {
	// Name returns the manifest kind handled by this repository.
	Name() entities.ManifestKind

	// FileName returns the manifest file name looked up in each project directory.
	FileName() string

	// Read parses the manifest at path. It fails with *entities.ManifestError on malformed input.
	Read(path string) (*entities.Manifest, error)

	// Parse parses manifest content already read from path.
	Parse(path string, data []byte) (*entities.Manifest, error)

	// WriteVersion sets the manifest version and rewrites the ranges of the given in-repo
	// dependencies that still admit their previous version. The file is left untouched on error.
	WriteVersion(path, version string, dependencies map[string]entities.VersionChange) error
}
