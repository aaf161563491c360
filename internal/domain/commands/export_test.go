package commands

// UnderFolder exports underFolder for testing.
var UnderFolder = underFolder //nolint:gochecknoglobals // test export

// DependencyChanges exports dependencyChanges for testing.
var DependencyChanges = dependencyChanges //nolint:gochecknoglobals // test export

// CheckVersions exports checkVersions for testing.
var CheckVersions = checkVersions //nolint:gochecknoglobals // test export
