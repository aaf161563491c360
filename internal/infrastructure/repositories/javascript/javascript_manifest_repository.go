package javascript

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const manifestFile = "package.json"

// dependencySections are the package.json objects that declare dependencies on other packages.
var dependencySections = []string{ //nolint:gochecknoglobals // constant table
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

// ManifestRepository implements repositories.ManifestRepository for package.json files.
// Writes go through sjson so key order and formatting of untouched fields are preserved.
type ManifestRepository struct {
	fs afero.Fs
}

// NewManifestRepository creates a package.json manifest repository.
func NewManifestRepository(fs afero.Fs) repositories.ManifestRepository {
	return &ManifestRepository{fs: fs}
}

func (r *ManifestRepository) Name() entities.ManifestKind { return entities.KindJavaScript }
func (r *ManifestRepository) FileName() string             { return manifestFile }

// Read parses a package.json file.
func (r *ManifestRepository) Read(path string) (*entities.Manifest, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse parses manifest content already read from path.
func (r *ManifestRepository) Parse(path string, data []byte) (*entities.Manifest, error) {
	return Parse(path, data)
}

// Parse parses package.json content read from path.
func Parse(path string, data []byte) (*entities.Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, &entities.ManifestError{Path: path, Err: errors.New("invalid JSON")}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &entities.ManifestError{Path: path, Err: errors.New("top-level value is not an object")}
	}

	name := doc.Get("name").String()
	if name == "" {
		return nil, &entities.ManifestError{Path: path, Err: errors.New(`missing "name"`)}
	}

	manifest := &entities.Manifest{
		Kind:         entities.KindJavaScript,
		Name:         name,
		Version:      doc.Get("version").String(),
		Private:      doc.Get("private").Bool(),
		Scripts:      map[string]string{},
		Dependencies: map[string]string{},
	}
	doc.Get("scripts").ForEach(func(key, value gjson.Result) bool {
		manifest.Scripts[key.String()] = value.String()
		return true
	})
	for _, section := range dependencySections {
		doc.Get(section).ForEach(func(key, value gjson.Result) bool {
			if _, seen := manifest.Dependencies[key.String()]; !seen {
				manifest.Dependencies[key.String()] = value.String()
			}
			return true
		})
	}
	return manifest, nil
}

// WriteVersion sets "version" and rewrites the ranges of released siblings in every dependency
// section.
func (r *ManifestRepository) WriteVersion(
	path, version string,
	dependencies map[string]entities.VersionChange,
) error {
	info, err := r.fs.Stat(path)
	if err != nil {
		return &entities.ManifestError{Path: path, Err: err}
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return &entities.ManifestError{Path: path, Err: err}
	}

	updated, err := SetVersion(data, version, dependencies)
	if err != nil {
		return &entities.ManifestError{Path: path, Err: err}
	}
	if err = afero.WriteFile(r.fs, path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SetVersion returns package.json content with the new version and rewritten dependency ranges.
func SetVersion(data []byte, version string, dependencies map[string]entities.VersionChange) ([]byte, error) {
	out, err := sjson.SetBytes(data, "version", version)
	if err != nil {
		return nil, fmt.Errorf("failed to set version: %w", err)
	}

	for _, section := range dependencySections {
		for name, change := range dependencies {
			key := section + "." + escapeKey(name)
			current := gjson.GetBytes(out, key)
			if !current.Exists() {
				continue
			}
			rewritten := entities.RewriteRange(current.String(), change.From, change.To)
			if rewritten == current.String() {
				continue
			}
			if out, err = sjson.SetBytes(out, key, rewritten); err != nil {
				return nil, fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}
	return out, nil
}

// escapeKey escapes the path characters that appear in scoped package names.
func escapeKey(name string) string {
	escaped := make([]byte, 0, len(name))
	for i := range len(name) {
		switch name[i] {
		case '.', '*', '?', '@', '#', '|', ':':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, name[i])
	}
	return string(escaped)
}
