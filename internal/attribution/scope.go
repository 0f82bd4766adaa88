// Package attribution matches commits to the projects they affect, either
// by a Conventional Commit's scope token or by which project directories a
// commit's changed files fall under. ScopeMatcher is grounded directly on
// original_source's commit_analyzer.rs ScopeMatcher/ScopeMatchMode.
package attribution

import "strings"

// MatchMode selects how a commit scope is matched against candidate project
// names.
type MatchMode int

const (
	// Smart tries Exact, then Suffix, then Contains, in that order,
	// returning the first mode that produces a match.
	Smart MatchMode = iota
	Exact
	Suffix
	Contains
)

// ScopeMatcher resolves a commit's free-text scope to one of a repository's
// known project names.
type ScopeMatcher struct {
	Mode MatchMode
	// ScopeMappings is an explicit scope -> project-name override, checked
	// before any mode-based matching.
	ScopeMappings map[string]string
	// PackageScopes maps a project name to the literal scope string it is
	// addressed by, checked after ScopeMappings and before mode matching.
	PackageScopes map[string]string
}

// NewScopeMatcher builds a ScopeMatcher defaulting to Smart mode with empty
// override maps, matching original_source's ScopeMatcher::default.
func NewScopeMatcher() ScopeMatcher {
	return ScopeMatcher{Mode: Smart}
}

// FindMatchingProject resolves scope against candidates (project names),
// in the precedence order: ScopeMappings, then PackageScopes (reverse
// lookup), then mode-based matching. It returns ok=false if scope is empty
// or matches nothing.
func (m ScopeMatcher) FindMatchingProject(scope string, candidates []string) (string, bool) {
	if scope == "" {
		return "", false
	}

	if m.ScopeMappings != nil {
		if name, ok := m.ScopeMappings[scope]; ok {
			return name, true
		}
	}

	if m.PackageScopes != nil {
		for name, pkgScope := range m.PackageScopes {
			if pkgScope == scope {
				return name, true
			}
		}
	}

	switch m.Mode {
	case Exact:
		return matchExact(scope, candidates)
	case Suffix:
		return matchSuffix(scope, candidates)
	case Contains:
		return matchContains(scope, candidates)
	default:
		return matchSmart(scope, candidates)
	}
}

// matchExact compares scope and each candidate name case-insensitively,
// per the spec's "scope lowercased equals project name lowercased" rule.
func matchExact(scope string, candidates []string) (string, bool) {
	lowerScope := strings.ToLower(scope)
	for _, c := range candidates {
		if strings.ToLower(c) == lowerScope {
			return c, true
		}
	}
	return "", false
}

// matchSuffix matches a candidate equal to scope, or ending with "-<scope>"
// or "_<scope>" (e.g. scope "core" matches "release-core" or "release_core"),
// per the spec's suffix rule.
func matchSuffix(scope string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == scope || strings.HasSuffix(c, "-"+scope) || strings.HasSuffix(c, "_"+scope) {
			return c, true
		}
	}
	return "", false
}

func matchContains(scope string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.Contains(c, scope) {
			return c, true
		}
	}
	return "", false
}

func matchSmart(scope string, candidates []string) (string, bool) {
	if name, ok := matchExact(scope, candidates); ok {
		return name, ok
	}
	if name, ok := matchSuffix(scope, candidates); ok {
		return name, ok
	}
	return matchContains(scope, candidates)
}
