package entities

import "sort"

// ManifestKind identifies the ecosystem of a project manifest.
type ManifestKind string

const (
	KindJavaScript ManifestKind = "javascript"
	KindPython     ManifestKind = "python"
	KindTerraform  ManifestKind = "terraform"
)

// Project is one sub-project of the monorepo, identified by the name declared in its manifest.
// A Project is created once per invocation by discovery and never mutated afterwards.
type Project struct {
	Name         string
	Path         string // absolute directory
	Folder       string // slash-separated path relative to the monorepo root
	Version      string
	Dependencies []string // sorted, de-duplicated; may name projects outside the working set
	Manifest     string   // absolute manifest path
	Kind         ManifestKind
	Private      bool
	Scripts      map[string]string
}

// NewProject builds a Project from a parsed manifest.
func NewProject(path, folder, manifestPath string, manifest *Manifest) *Project {
	return &Project{
		Name:         manifest.Name,
		Path:         path,
		Folder:       folder,
		Version:      manifest.Version,
		Dependencies: normalizeNames(manifest.Dependencies),
		Manifest:     manifestPath,
		Kind:         manifest.Kind,
		Private:      manifest.Private,
		Scripts:      manifest.Scripts,
	}
}

// DependsOn reports whether the project declares a dependency on the given name.
func (p *Project) DependsOn(name string) bool {
	i := sort.SearchStrings(p.Dependencies, name)
	return i < len(p.Dependencies) && p.Dependencies[i] == name
}

// HasScript reports whether the manifest declares the named script.
func (p *Project) HasScript(name string) bool {
	_, ok := p.Scripts[name]
	return ok
}

// Manifest is the parsed content of a project manifest file.
type Manifest struct {
	Kind    ManifestKind
	Name    string
	Version string
	Private bool
	Scripts map[string]string

	// Dependencies maps dependency names to the version range declared for them.
	Dependencies map[string]string
}

func normalizeNames(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectNames returns the names of the given projects, preserving order.
func ProjectNames(projects []*Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}
