//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"maps"
	"path"
	"slices"
	"sort"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

const (
	defaultProjectName    = "test-project"
	defaultProjectVersion = "1.0.0"
	defaultPackagesDir    = "/repo/packages"
)

// ProjectBuilder helps create test projects with a fluent interface.
type ProjectBuilder struct {
	*testkit.BaseBuilder
	name         string
	path         string
	version      string
	dependencies []string
	kind         entities.ManifestKind
	private      bool
	scripts      map[string]string
}

// NewProjectBuilder creates a new project builder with sensible defaults.
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        defaultProjectName,
		version:     defaultProjectVersion,
		kind:        entities.KindJavaScript,
		scripts:     map[string]string{},
	}
}

// WithName sets the project name.
func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.name = name
	return b
}

// WithPath sets the absolute project directory.
func (b *ProjectBuilder) WithPath(dir string) *ProjectBuilder {
	b.path = dir
	return b
}

// WithVersion sets the manifest version.
func (b *ProjectBuilder) WithVersion(version string) *ProjectBuilder {
	b.version = version
	return b
}

// WithDependencies sets the declared dependency names.
func (b *ProjectBuilder) WithDependencies(names ...string) *ProjectBuilder {
	b.dependencies = names
	return b
}

// WithKind sets the manifest kind.
func (b *ProjectBuilder) WithKind(kind entities.ManifestKind) *ProjectBuilder {
	b.kind = kind
	return b
}

// WithPrivate marks the project as never published.
func (b *ProjectBuilder) WithPrivate() *ProjectBuilder {
	b.private = true
	return b
}

// WithScript adds a named manifest script.
func (b *ProjectBuilder) WithScript(name, command string) *ProjectBuilder {
	b.scripts[name] = command
	return b
}

// Build creates the project (satisfies testkit.Builder interface).
func (b *ProjectBuilder) Build() interface{} {
	return b.BuildProject()
}

// BuildProject creates the project with a concrete return type.
func (b *ProjectBuilder) BuildProject() *entities.Project {
	dir := b.path
	if dir == "" {
		dir = path.Join(defaultPackagesDir, path.Base(b.name))
	}
	deps := slices.Clone(b.dependencies)
	sort.Strings(deps)
	return &entities.Project{
		Name:         b.name,
		Path:         dir,
		Folder:       "packages/" + path.Base(dir),
		Version:      b.version,
		Dependencies: slices.Compact(deps),
		Manifest:     path.Join(dir, "package.json"),
		Kind:         b.kind,
		Private:      b.private,
		Scripts:      maps.Clone(b.scripts),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProjectBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = defaultProjectName
	b.path = ""
	b.version = defaultProjectVersion
	b.dependencies = nil
	b.kind = entities.KindJavaScript
	b.private = false
	b.scripts = map[string]string{}
	return b
}

// Clone creates a deep copy of the ProjectBuilder.
func (b *ProjectBuilder) Clone() testkit.Builder {
	return &ProjectBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		path:         b.path,
		version:      b.version,
		dependencies: slices.Clone(b.dependencies),
		kind:         b.kind,
		private:      b.private,
		scripts:      maps.Clone(b.scripts),
	}
}

// Projects builds one project per name where deps maps a name to the names it depends on.
func Projects(names []string, deps map[string][]string) []*entities.Project {
	out := make([]*entities.Project, 0, len(names))
	for _, name := range names {
		out = append(out, NewProjectBuilder().WithName(name).WithDependencies(deps[name]...).BuildProject())
	}
	return out
}
