// Package history turns raw Git commit ranges into the per-project commit
// sets CommitAttribution and BumpAnalyzer consume, combining
// gitrepo.Repository's tree-diff attribution with commit-message scope
// parsing.
package history

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/ilblu/belaf/internal/attribution"
	"github.com/ilblu/belaf/internal/conventional"
	"github.com/ilblu/belaf/internal/gitrepo"
	"github.com/ilblu/belaf/internal/repopath"
)

// Strategy selects how CommitsForProject attributes a commit to a project.
type Strategy string

const (
	// Hybrid tries scope attribution first, falling back to path
	// attribution for commits that carry no scope or an unresolvable one.
	Hybrid Strategy = "hybrid"
	// Scope attributes solely by Conventional Commit scope; a commit with
	// no scope, or a scope ScopeMatcher can't resolve, is not attributed.
	Scope Strategy = "scope"
	// Path attributes solely by whether the commit's changed files fall
	// under the project's path, ignoring any declared scope.
	Path Strategy = "path"
)

// Analyzer attributes commits to projects.
type Analyzer struct {
	repo    *gitrepo.Repository
	matcher attribution.ScopeMatcher
}

// New builds an Analyzer over repo using matcher for scope-based
// attribution.
func New(repo *gitrepo.Repository, matcher attribution.ScopeMatcher) *Analyzer {
	return &Analyzer{repo: repo, matcher: matcher}
}

// CommitsForProject returns the raw commit messages, since `from` up to
// and including `to`, that are attributed to the project at projectPath
// among candidateNames, per strategy: Hybrid tries a Conventional Commit
// scope that ScopeMatcher resolves to this project, falling back to
// path-based attribution (the commit's changed files fall under
// projectPath) when the commit carries no scope or an unresolvable one;
// Scope uses only the former; Path uses only the latter. Hybrid mirrors
// original_source's combination of scope-based and tree-diff-based
// attribution: a scope is a stronger, author-declared signal, but most
// commits in a real history carry no scope at all.
func (a *Analyzer) CommitsForProject(from, to plumbing.Hash, projectName string, projectPath repopath.Path, candidateNames []string, strategy Strategy) ([]string, error) {
	commits, err := a.repo.CommitsSince(from, to)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}

	var out []string
	for _, c := range commits {
		if strategy != Path {
			if resolved, ok := a.resolveScope(c.Message, candidateNames); ok {
				if resolved == projectName {
					out = append(out, c.Message)
				}
				continue
			}
		}
		if strategy == Scope {
			continue
		}
		touches, err := a.repo.TreeTouchesPrefix(c.Hash, projectPath)
		if err != nil {
			return nil, fmt.Errorf("diffing commit %s: %w", c.Hash, err)
		}
		if touches {
			out = append(out, c.Message)
		}
	}
	return out, nil
}

func (a *Analyzer) resolveScope(message string, candidateNames []string) (string, bool) {
	cc, ok := conventional.Parse(message)
	if !ok || cc.Scope == "" {
		return "", false
	}
	return a.matcher.FindMatchingProject(cc.Scope, candidateNames)
}
