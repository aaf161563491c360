package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"
)

// Bump names a version increment understood by NextVersion.
type Bump string

const (
	BumpMajor      Bump = "major"
	BumpMinor      Bump = "minor"
	BumpPatch      Bump = "patch"
	BumpPremajor   Bump = "premajor"
	BumpPreminor   Bump = "preminor"
	BumpPrepatch   Bump = "prepatch"
	BumpPrerelease Bump = "prerelease"
)

const defaultPreid = "next"

// rangePrefixes are the range operators preserved when a dependency range is rewritten,
// longest first so "~>" wins over "~" and ">=" over ">".
var rangePrefixes = []string{"~>", ">=", "<=", "^", "~", ">", "="} //nolint:gochecknoglobals // constant table

// IsValidVersion reports whether the string is a semantic version, with or without a "v" prefix.
func IsValidVersion(version string) bool {
	return modsemver.IsValid(normalizeVersion(version))
}

// CompareVersions compares two semantic versions, returning -1, 0 or +1.
func CompareVersions(a, b string) int {
	return modsemver.Compare(normalizeVersion(a), normalizeVersion(b))
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// NextVersion computes the version following current for the requested bump. When bump is not
// one of the named increments it is treated as an explicit target version.
func NextVersion(current string, bump Bump, preid string) (string, error) {
	if preid == "" {
		preid = defaultPreid
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return "", fmt.Errorf("invalid current version %q: %w", current, err)
	}

	var next semver.Version
	switch bump {
	case BumpMajor:
		next = cur.IncMajor()
	case BumpMinor:
		next = cur.IncMinor()
	case BumpPatch:
		next = cur.IncPatch()
	case BumpPremajor:
		next = *semver.New(cur.Major()+1, 0, 0, preid+".0", "")
	case BumpPreminor:
		next = *semver.New(cur.Major(), cur.Minor()+1, 0, preid+".0", "")
	case BumpPrepatch:
		next = *semver.New(cur.Major(), cur.Minor(), cur.Patch()+1, preid+".0", "")
	case BumpPrerelease:
		next = nextPrerelease(cur, preid)
	default:
		explicit, parseErr := semver.NewVersion(string(bump))
		if parseErr != nil {
			return "", NewConfigurationError(fmt.Sprintf("unknown bump %q", bump), parseErr)
		}
		if !explicit.GreaterThan(cur) {
			return "", NewConfigurationError(
				fmt.Sprintf("explicit version %s is not greater than %s", explicit, cur), nil,
			)
		}
		next = *explicit
	}
	return next.String(), nil
}

// nextPrerelease increments the trailing numeric identifier of a matching prerelease, or starts
// a new prerelease line on the next patch.
func nextPrerelease(cur *semver.Version, preid string) semver.Version {
	pre := cur.Prerelease()
	if pre == "" {
		return *semver.New(cur.Major(), cur.Minor(), cur.Patch()+1, preid+".0", "")
	}

	parts := strings.Split(pre, ".")
	if parts[0] != preid {
		return *semver.New(cur.Major(), cur.Minor(), cur.Patch(), preid+".0", "")
	}
	last := parts[len(parts)-1]
	if n, err := strconv.Atoi(last); err == nil && len(parts) > 1 {
		parts[len(parts)-1] = strconv.Itoa(n + 1)
	} else {
		parts = append(parts, "0")
	}
	return *semver.New(cur.Major(), cur.Minor(), cur.Patch(), strings.Join(parts, "."), "")
}

// RewriteRange returns the dependency range pointing at newVersion while keeping the range
// operator. Ranges that do not currently admit oldVersion, and non-semver specifiers such as
// "*", "latest" or "file:../x", are returned unchanged.
func RewriteRange(current, oldVersion, newVersion string) string {
	protocol := ""
	spec := current
	if strings.HasPrefix(spec, "workspace:") {
		protocol = "workspace:"
		spec = strings.TrimPrefix(spec, protocol)
	}

	prefix := ""
	for _, p := range rangePrefixes {
		if strings.HasPrefix(spec, p) {
			prefix = p
			break
		}
	}
	bare := strings.TrimSpace(strings.TrimPrefix(spec, prefix))
	if _, err := semver.NewVersion(bare); err != nil {
		return current
	}

	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return current
	}
	old, err := semver.NewVersion(oldVersion)
	if err != nil || !constraint.Check(old) {
		return current
	}
	return protocol + prefix + newVersion
}
