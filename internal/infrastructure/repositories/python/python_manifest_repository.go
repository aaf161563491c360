package python

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const manifestFile = "pyproject.toml"

var (
	tableHeaderPattern = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*(#.*)?$`)
	versionLinePattern = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])[^"']*(["'])(.*)$`)
	quotedPattern      = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
	requirementPattern = regexp.MustCompile(
		`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(==|>=|~=|<=|>|<|!=)?\s*([^,;\s]*)(.*)$`,
	)
	separatorPattern = regexp.MustCompile(`[-_.]+`)
)

// pep440ToRange maps PEP 440 comparison operators onto the range operators understood by
// entities.RewriteRange.
var pep440ToRange = map[string]string{ //nolint:gochecknoglobals // constant table
	"==": "=",
	">=": ">=",
	"<=": "<=",
	"~=": "~",
	">":  ">",
}

type pyproject struct {
	Project struct {
		Name                 string              `toml:"name"`
		Version              string              `toml:"version"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Monorepo struct {
			Private bool              `toml:"private"`
			Scripts map[string]string `toml:"scripts"`
		} `toml:"monorepo"`
	} `toml:"tool"`
}

// ManifestRepository implements repositories.ManifestRepository for PEP 621 pyproject.toml files.
// Private projects and runnable scripts are declared under [tool.monorepo].
type ManifestRepository struct {
	fs afero.Fs
}

// NewManifestRepository creates a pyproject.toml manifest repository.
func NewManifestRepository(fs afero.Fs) repositories.ManifestRepository {
	return &ManifestRepository{fs: fs}
}

func (r *ManifestRepository) Name() entities.ManifestKind { return entities.KindPython }
func (r *ManifestRepository) FileName() string             { return manifestFile }

// Read parses a pyproject.toml file.
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

// Parse parses pyproject.toml content read from path. Project and dependency names are
// normalized the way PyPI compares them.
func Parse(path string, data []byte) (*entities.Manifest, error) {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	if doc.Project.Name == "" {
		return nil, &entities.ManifestError{Path: path, Err: errors.New("missing [project] name")}
	}

	manifest := &entities.Manifest{
		Kind:         entities.KindPython,
		Name:         NormalizeName(doc.Project.Name),
		Version:      doc.Project.Version,
		Private:      doc.Tool.Monorepo.Private,
		Scripts:      map[string]string{},
		Dependencies: map[string]string{},
	}
	for name, script := range doc.Tool.Monorepo.Scripts {
		manifest.Scripts[name] = script
	}

	requirements := append([]string{}, doc.Project.Dependencies...)
	for _, group := range doc.Project.OptionalDependencies {
		requirements = append(requirements, group...)
	}
	for _, requirement := range requirements {
		match := requirementPattern.FindStringSubmatch(strings.TrimSpace(requirement))
		if match == nil {
			continue
		}
		name := NormalizeName(match[1])
		if _, seen := manifest.Dependencies[name]; !seen {
			manifest.Dependencies[name] = strings.TrimSpace(match[3] + match[4] + match[5])
		}
	}
	return manifest, nil
}

// NormalizeName lowercases a distribution name and collapses runs of "-", "_" and "." into "-".
func NormalizeName(name string) string {
	return separatorPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// WriteVersion rewrites the [project] version and the single-specifier requirements of released
// siblings. Lines are edited in place so comments and layout survive.
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

// SetVersion returns pyproject.toml content with the new version and rewritten requirements.
// The result is parsed again before being returned.
func SetVersion(data []byte, version string, dependencies map[string]entities.VersionChange) ([]byte, error) {
	changes := make(map[string]entities.VersionChange, len(dependencies))
	for name, change := range dependencies {
		changes[NormalizeName(name)] = change
	}

	lines := strings.Split(string(data), "\n")
	table := ""
	versionSet := false
	for i, line := range lines {
		if header := tableHeaderPattern.FindStringSubmatch(line); header != nil {
			table = strings.TrimSpace(header[1])
			continue
		}
		switch table {
		case "project":
			if !versionSet && versionLinePattern.MatchString(line) {
				lines[i] = versionLinePattern.ReplaceAllString(line, "${1}${2}"+version+"${3}${4}")
				versionSet = true
				continue
			}
			lines[i] = rewriteRequirements(line, changes)
		case "project.optional-dependencies":
			lines[i] = rewriteRequirements(line, changes)
		}
	}
	if !versionSet {
		return nil, errors.New("no version field in [project]")
	}

	out := []byte(strings.Join(lines, "\n"))
	var check pyproject
	if err := toml.Unmarshal(out, &check); err != nil {
		return nil, fmt.Errorf("rewritten manifest is invalid: %w", err)
	}
	return out, nil
}

func rewriteRequirements(line string, changes map[string]entities.VersionChange) string {
	if len(changes) == 0 {
		return line
	}
	return quotedPattern.ReplaceAllStringFunc(line, func(quoted string) string {
		quote := quoted[:1]
		requirement := quoted[1 : len(quoted)-1]
		rewritten, ok := rewriteRequirement(requirement, changes)
		if !ok {
			return quoted
		}
		return quote + rewritten + quote
	})
}

func rewriteRequirement(requirement string, changes map[string]entities.VersionChange) (string, bool) {
	match := requirementPattern.FindStringSubmatch(requirement)
	if match == nil || match[3] == "" || strings.HasPrefix(strings.TrimSpace(match[5]), ",") {
		return "", false
	}
	change, ok := changes[NormalizeName(match[1])]
	if !ok {
		return "", false
	}
	operator, ok := pep440ToRange[match[3]]
	if !ok {
		return "", false
	}

	current := operator + match[4]
	rewritten := entities.RewriteRange(current, change.From, change.To)
	if rewritten == current {
		return "", false
	}
	return match[1] + match[2] + match[3] + change.To + match[5], true
}
