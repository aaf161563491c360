package entities

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Selection narrows the discovered projects an operation runs on.
type Selection struct {
	Projects            []string // names or glob patterns; empty selects everything
	Ignore              []string // names or glob patterns removed from the selection
	IncludeDependencies bool
}

// Apply returns the selected projects in discovery order. A literal name that matches no project
// is a configuration error; a pattern matching nothing is not.
func (s Selection) Apply(projects []*Project) ([]*Project, error) {
	selected := make(map[string]bool, len(projects))
	if len(s.Projects) == 0 {
		for _, p := range projects {
			selected[p.Name] = true
		}
	} else {
		for _, pattern := range s.Projects {
			matched, err := matchNames(projects, pattern)
			if err != nil {
				return nil, err
			}
			if len(matched) == 0 && isLiteral(pattern) {
				return nil, NewConfigurationError(fmt.Sprintf("unknown project %q", pattern), nil)
			}
			for _, name := range matched {
				selected[name] = true
			}
		}
	}

	if s.IncludeDependencies {
		names := make([]string, 0, len(selected))
		for name := range selected {
			names = append(names, name)
		}
		for _, dep := range NewDependencyGraph(projects).TransitiveDependencies(names) {
			selected[dep.Name] = true
		}
	}

	for _, pattern := range s.Ignore {
		matched, err := matchNames(projects, pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range matched {
			delete(selected, name)
		}
	}

	out := make([]*Project, 0, len(selected))
	for _, p := range projects {
		if selected[p.Name] {
			out = append(out, p)
		}
	}
	return out, nil
}

// MatchAny reports whether value matches one of the glob patterns.
func MatchAny(patterns []string, value string) (bool, error) {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return false, NewConfigurationError(fmt.Sprintf("invalid pattern %q", pattern), err)
		}
		if g.Match(value) {
			return true, nil
		}
	}
	return false, nil
}

func matchNames(projects []*Project, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("invalid project pattern %q", pattern), err)
	}
	var names []string
	for _, p := range projects {
		if g.Match(p.Name) {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

func isLiteral(pattern string) bool {
	return glob.QuoteMeta(pattern) == pattern
}
