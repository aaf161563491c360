package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// FilesystemProjectRepository discovers projects by scanning the configured package directories
// for manifest files.
type FilesystemProjectRepository struct {
	fs        afero.Fs
	manifests *ManifestRegistry
}

var _ domainRepos.ProjectRepository = (*FilesystemProjectRepository)(nil)

// NewFilesystemProjectRepository creates a discovery repository over the given filesystem.
func NewFilesystemProjectRepository(fs afero.Fs, manifests *ManifestRegistry) *FilesystemProjectRepository {
	return &FilesystemProjectRepository{fs: fs, manifests: manifests}
}

// Discover returns the projects of the monorepo in discovery order: configured directories in
// order, child directories sorted by name.
func (r *FilesystemProjectRepository) Discover(
	ctx context.Context,
	settings *entities.Settings,
) ([]*entities.Project, error) {
	for _, name := range settings.Manifests {
		if r.manifests.Get(name) == nil {
			return nil, entities.NewConfigurationError(
				fmt.Sprintf("unsupported manifest %q (supported: %v)", name, r.manifests.FileNames()), nil,
			)
		}
	}

	var (
		projects []*entities.Project
		err      error
	)
	if settings.Mode == entities.ModeSingle {
		projects, err = r.discoverSingle(settings)
	} else {
		projects, err = r.discoverMulti(ctx, settings)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(projects))
	for _, p := range projects {
		if other, dup := seen[p.Name]; dup {
			return nil, entities.NewConfigurationError(
				fmt.Sprintf("duplicate project name %q in %s and %s", p.Name, other, p.Folder), nil,
			)
		}
		seen[p.Name] = p.Folder
	}
	logger.Debugf("[discovery] Found %d project(s) under %s", len(projects), settings.Root)
	return projects, nil
}

func (r *FilesystemProjectRepository) discoverSingle(settings *entities.Settings) ([]*entities.Project, error) {
	project, found, err := r.readProject(settings, settings.Root, ".")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, entities.NewConfigurationError(
			fmt.Sprintf("no manifest (%s) at %s", strings.Join(settings.Manifests, ", "), settings.Root), nil,
		)
	}
	return []*entities.Project{project}, nil
}

func (r *FilesystemProjectRepository) discoverMulti(
	ctx context.Context,
	settings *entities.Settings,
) ([]*entities.Project, error) {
	var projects []*entities.Project
	for _, configured := range settings.Packages {
		dir := path.Clean(strings.TrimSuffix(filepath.ToSlash(configured), "/*"))
		absDir := filepath.Join(settings.Root, filepath.FromSlash(dir))

		entries, err := afero.ReadDir(r.fs, absDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debugf("[discovery] Directory %s does not exist, skipping", absDir)
				continue
			}
			return nil, fmt.Errorf("failed to list %s: %w", absDir, err)
		}

		for _, entry := range entries {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !entry.IsDir() {
				continue
			}

			folder := path.Join(dir, entry.Name())
			project, found, readErr := r.readProject(settings, filepath.Join(absDir, entry.Name()), folder)
			if readErr != nil {
				logger.Warnf("[discovery] Skipping %s: %v", folder, readErr)
				continue
			}
			if found {
				projects = append(projects, project)
			}
		}
	}
	return projects, nil
}

// readProject parses the first configured manifest present in dir. found is false when the
// directory holds none of them.
func (r *FilesystemProjectRepository) readProject(
	settings *entities.Settings,
	dir, folder string,
) (*entities.Project, bool, error) {
	for _, name := range settings.Manifests {
		manifestPath := filepath.Join(dir, name)
		data, err := afero.ReadFile(r.fs, manifestPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, false, &entities.ManifestError{Path: manifestPath, Err: err}
		}

		manifest, err := r.manifests.Get(name).Parse(manifestPath, data)
		if err != nil {
			return nil, false, err
		}
		return entities.NewProject(dir, folder, manifestPath, manifest), true, nil
	}
	return nil, false, nil
}
