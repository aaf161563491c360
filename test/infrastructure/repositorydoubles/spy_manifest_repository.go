//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// SpyManifestRepository implements repositories.ManifestRepository. WriteVersion writes
// "version=<version>" into the manifest on Fs so tests can observe and restore it.
type SpyManifestRepository struct {
	Kind     entities.ManifestKind
	File     string
	Fs       afero.Fs
	WriteErr map[string]error // by manifest path
	Writes   []WriteVersionCall
}

// WriteVersionCall records a single invocation of WriteVersion.
type WriteVersionCall struct {
	Path         string
	Version      string
	Dependencies map[string]entities.VersionChange
}

var _ repositories.ManifestRepository = (*SpyManifestRepository)(nil)

func (m *SpyManifestRepository) Name() entities.ManifestKind { return m.Kind }

func (m *SpyManifestRepository) FileName() string { return m.File }

func (m *SpyManifestRepository) Read(path string) (*entities.Manifest, error) {
	data, err := afero.ReadFile(m.Fs, path)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	return m.Parse(path, data)
}

func (m *SpyManifestRepository) Parse(path string, data []byte) (*entities.Manifest, error) {
	if len(data) == 0 {
		return nil, &entities.ManifestError{Path: path, Err: fmt.Errorf("empty manifest")}
	}
	return &entities.Manifest{Kind: m.Kind, Name: string(data)}, nil
}

func (m *SpyManifestRepository) WriteVersion(
	path, version string,
	dependencies map[string]entities.VersionChange,
) error {
	if err := m.WriteErr[path]; err != nil {
		return err
	}
	m.Writes = append(m.Writes, WriteVersionCall{Path: path, Version: version, Dependencies: dependencies})
	if m.Fs == nil {
		return nil
	}
	return afero.WriteFile(m.Fs, path, []byte("version="+version), 0o644)
}
