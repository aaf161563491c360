package terraform

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const (
	manifestFile = "project.hcl"

	attrName         = "name"
	attrVersion      = "version"
	attrPrivate      = "private"
	attrDependencies = "dependencies"
	attrScripts      = "scripts"
)

// ManifestRepository implements repositories.ManifestRepository for project.hcl files, the
// manifest of Terraform modules living in the monorepo:
//
//	name         = "network"
//	version      = "1.2.0"
//	dependencies = { vpc = "~> 1.0.0" }
//	scripts      = { build = "terraform validate" }
type ManifestRepository struct {
	fs afero.Fs
}

// NewManifestRepository creates a project.hcl manifest repository.
func NewManifestRepository(fs afero.Fs) repositories.ManifestRepository {
	return &ManifestRepository{fs: fs}
}

func (r *ManifestRepository) Name() entities.ManifestKind { return entities.KindTerraform }
func (r *ManifestRepository) FileName() string             { return manifestFile }

// Read parses a project.hcl file.
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

// Parse parses project.hcl content read from path.
func Parse(path string, data []byte) (*entities.Manifest, error) {
	attrs, err := evaluateAttributes(path, data)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}

	name, err := stringAttribute(attrs, attrName)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	if name == "" {
		return nil, &entities.ManifestError{Path: path, Err: errors.New(`missing "name"`)}
	}
	version, err := stringAttribute(attrs, attrVersion)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}

	manifest := &entities.Manifest{
		Kind:    entities.KindTerraform,
		Name:    name,
		Version: version,
	}
	if val, ok := attrs[attrPrivate]; ok {
		if val.Type() != cty.Bool || val.IsNull() {
			return nil, &entities.ManifestError{Path: path, Err: errors.New(`"private" must be a bool`)}
		}
		manifest.Private = val.True()
	}
	if manifest.Dependencies, err = stringMapAttribute(attrs, attrDependencies); err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	if manifest.Scripts, err = stringMapAttribute(attrs, attrScripts); err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	return manifest, nil
}

// WriteVersion sets the version attribute and rewrites the dependencies object when one of its
// ranges points at a released sibling.
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

	updated, err := SetVersion(path, data, version, dependencies)
	if err != nil {
		return &entities.ManifestError{Path: path, Err: err}
	}
	if err = afero.WriteFile(r.fs, path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SetVersion returns project.hcl content with the new version and rewritten dependency ranges.
func SetVersion(
	path string,
	data []byte,
	version string,
	dependencies map[string]entities.VersionChange,
) ([]byte, error) {
	attrs, err := evaluateAttributes(path, data)
	if err != nil {
		return nil, err
	}
	current, err := stringMapAttribute(attrs, attrDependencies)
	if err != nil {
		return nil, err
	}

	file, diags := hclwrite.ParseConfig(data, path, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body := file.Body()
	body.SetAttributeValue(attrVersion, cty.StringVal(version))

	changed := false
	rewritten := make(map[string]cty.Value, len(current))
	for name, spec := range current {
		value := spec
		if change, ok := dependencies[name]; ok {
			value = entities.RewriteRange(spec, change.From, change.To)
			changed = changed || value != spec
		}
		rewritten[name] = cty.StringVal(value)
	}
	if changed {
		body.SetAttributeValue(attrDependencies, cty.ObjectVal(rewritten))
	}
	return hclwrite.Format(file.Bytes()), nil
}

func evaluateAttributes(path string, data []byte) (map[string]cty.Value, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}

	hclAttrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	values := make(map[string]cty.Value, len(hclAttrs))
	for name, attr := range hclAttrs {
		val, valDiags := attr.Expr.Value(&hcl.EvalContext{})
		if valDiags.HasErrors() {
			return nil, valDiags
		}
		values[name] = val
	}
	return values, nil
}

func stringAttribute(attrs map[string]cty.Value, name string) (string, error) {
	val, ok := attrs[name]
	if !ok || val.IsNull() {
		return "", nil
	}
	if val.Type() != cty.String {
		return "", fmt.Errorf("%q must be a string", name)
	}
	return val.AsString(), nil
}

func stringMapAttribute(attrs map[string]cty.Value, name string) (map[string]string, error) {
	out := map[string]string{}
	val, ok := attrs[name]
	if !ok || val.IsNull() {
		return out, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("%q must be an object", name)
	}

	for key, entry := range val.AsValueMap() {
		if entry.Type() != cty.String || entry.IsNull() {
			return nil, fmt.Errorf("%s.%s must be a string", name, key)
		}
		out[key] = entry.AsString()
	}
	return out, nil
}
