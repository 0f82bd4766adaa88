// Package release implements the four-phase ReleasePlanner: discover
// projects and build the dependency graph, attribute commits and recommend
// a bump per project, cascade bumps to dependents, then rewrite manifests
// and changelogs and emit a ReleaseManifest. The orchestration shape
// (build a plan object, mutate it in stages) is grounded on the teacher's
// pkg/release plan.go ReleasePlan/RepoReleasePlan pattern, generalized from
// grove's whole-ecosystem plan to this engine's per-project plan. The plan
// is held in memory for one run only; it is not persisted, and an
// interrupted run cannot be resumed.
package release

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"

	"github.com/ilblu/belaf/internal/atomicfile"
	"github.com/ilblu/belaf/internal/attribution"
	"github.com/ilblu/belaf/internal/belerr"
	"github.com/ilblu/belaf/internal/bump"
	"github.com/ilblu/belaf/internal/changelog"
	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/ecosystem"
	"github.com/ilblu/belaf/internal/gitrepo"
	"github.com/ilblu/belaf/internal/history"
	"github.com/ilblu/belaf/internal/manifest"
	"github.com/ilblu/belaf/internal/projectgraph"
	"github.com/ilblu/belaf/internal/version"
)

// ProjectPlan is one project's release plan, mutated through the four
// phases.
type ProjectPlan struct {
	ID              projectgraph.ID
	Name            string
	Ecosystem       ecosystem.Kind
	ManifestPath    string // absolute path to the ecosystem manifest
	CurrentVersion  string
	Recommendation  bump.Recommendation
	NextVersion     string
	Commits         []string
	CategorizedLogs []changelog.CategorizedCommit
	Skip            bool // true for ecosystems with no rewritable version (go, swift)
}

// Plan is the in-progress state of one release run across every discovered
// project.
type Plan struct {
	BaseBranch string
	Projects   []*ProjectPlan
	graph      *projectgraph.Graph
}

// Planner orchestrates the four phases over one repository.
type Planner struct {
	repo     *gitrepo.Repository
	reg      *ecosystem.Registry
	cfg      config.Config
	log      *logrus.Logger
	baseRoot string
}

// New builds a Planner.
func New(repo *gitrepo.Repository, reg *ecosystem.Registry, cfg config.Config, log *logrus.Logger, repoRoot string) *Planner {
	return &Planner{repo: repo, reg: reg, cfg: cfg, log: log, baseRoot: repoRoot}
}

// Graph returns the underlying dependency graph, for callers (the `belaf
// graph` command) that want to print edges rather than just the project
// list.
func (plan *Plan) Graph() *projectgraph.Graph { return plan.graph }

// Discover runs phase 1: walk the tree for ecosystem manifests and build
// the dependency graph from each project's declared dependencies that
// resolve to another discovered project.
func (p *Planner) Discover() (*Plan, error) {
	found, err := ecosystem.Discover(p.reg, p.baseRoot, p.cfg.Project.Ignore)
	if err != nil {
		return nil, fmt.Errorf("discovering projects: %w", err)
	}

	graph := projectgraph.New()
	plans := make([]*ProjectPlan, 0, len(found))
	byName := make(map[string]*ProjectPlan, len(found))

	for _, f := range found {
		if _, dup := byName[f.Name]; dup {
			return nil, belerr.Wrap(belerr.DuplicateProject, nil, "project %q is declared by more than one manifest", f.Name)
		}
		id := graph.AddNode(f.Name, string(f.Kind), f.Dir)
		pp := &ProjectPlan{
			ID:             id,
			Name:           f.Name,
			Ecosystem:      f.Kind,
			ManifestPath:   p.baseRoot + "/" + f.ManifestPath.String(),
			CurrentVersion: f.Version,
		}
		if _, hasRewriter := p.reg.Rewriter(f.Kind); !hasRewriter {
			pp.Skip = true
		}
		plans = append(plans, pp)
		byName[f.Name] = pp
	}

	for _, f := range found {
		fromID, _ := graph.Lookup(f.Name)
		for _, dep := range f.Dependencies {
			if _, ok := byName[dep.Name]; !ok {
				continue
			}
			toID, _ := graph.Lookup(dep.Name)
			graph.AddEdge(fromID, toID)
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Name < plans[j].Name })

	p.log.WithField("count", len(plans)).Debug("discovered projects")
	return &Plan{Projects: plans, graph: graph}, nil
}

// Attribute runs phase 2: for each project, gather the commits attributed
// to it since its last release tag and recommend a bump.
func (plan *Plan) Attribute(p *Planner, head plumbing.Hash) error {
	matcher := attribution.ScopeMatcher{
		ScopeMappings: p.cfg.CommitAttribution.ScopeMappings,
		PackageScopes: p.cfg.CommitAttribution.PackageScopes,
	}
	switch p.cfg.CommitAttribution.ScopeMatching {
	case "exact":
		matcher.Mode = attribution.Exact
	case "suffix":
		matcher.Mode = attribution.Suffix
	case "contains":
		matcher.Mode = attribution.Contains
	default:
		matcher.Mode = attribution.Smart
	}

	analyzer := history.New(p.repo, matcher)

	var strategy history.Strategy
	switch p.cfg.CommitAttribution.Strategy {
	case "scope":
		strategy = history.Scope
	case "path":
		strategy = history.Path
	default:
		strategy = history.Hybrid
	}

	bumpCfg := bump.Config{
		FeaturesAlwaysBumpMinor: p.cfg.Bump.FeaturesAlwaysBumpMinor,
		BreakingAlwaysBumpMajor: p.cfg.Bump.BreakingAlwaysBumpMajor,
	}

	names := make([]string, 0, len(plan.Projects))
	for _, pp := range plan.Projects {
		names = append(names, pp.Name)
	}

	for _, pp := range plan.Projects {
		node := plan.graph.Node(pp.ID)

		var fromHash plumbing.Hash
		_, _, commitHash, ok, err := p.repo.LastReleaseTag(tagPrefixFor(pp.Name))
		if err != nil {
			return fmt.Errorf("finding last release tag for %s: %w", pp.Name, err)
		}
		if ok {
			fromHash = commitHash
		}

		commits, err := analyzer.CommitsForProject(fromHash, head, pp.Name, node.Path, names, strategy)
		if err != nil {
			return fmt.Errorf("attributing commits for %s: %w", pp.Name, err)
		}
		pp.Commits = commits
		pp.Recommendation = bump.Recommend(commits, bumpCfg)
		pp.CategorizedLogs = changelog.Categorize(commits)
	}
	return nil
}

func tagPrefixFor(name string) string {
	return name
}

// Cascade runs phase 3: any project whose dependency recommends at least a
// Patch bump is itself bumped at least Patch, propagating along reverse
// edges regardless of the dependent's own bump policy (spec Open Question:
// cascaded patch bumps always propagate).
func (plan *Plan) Cascade() error {
	order, err := plan.graph.Toposorted()
	if err != nil {
		return fmt.Errorf("topologically sorting project graph: %w", err)
	}

	byID := make(map[projectgraph.ID]*ProjectPlan, len(plan.Projects))
	for _, pp := range plan.Projects {
		byID[pp.ID] = pp
	}

	for _, id := range order {
		pp := byID[id]
		if pp == nil {
			continue
		}
		if pp.Recommendation == bump.None {
			continue
		}
		for _, dependentID := range plan.graph.Dependents(id) {
			dependent := byID[dependentID]
			if dependent == nil {
				continue
			}
			dependent.Recommendation = dependent.Recommendation.Merge(bump.Patch)
		}
	}
	return nil
}

// ApplyOverrides replaces the commit-attribution-derived recommendation
// for every project with an explicit {name: bump} override map, bypassing
// Cascade entirely: a project named in overrides bumps exactly as
// specified, and a project not named is forced to bump.None regardless of
// its own commits or what its dependencies recommend. Call this instead of
// Cascade when the caller (a per-project override release run) wants full
// manual control over which projects release.
func (plan *Plan) ApplyOverrides(overrides map[string]bump.Recommendation) {
	for _, pp := range plan.Projects {
		rec, ok := overrides[pp.Name]
		if !ok {
			pp.Recommendation = bump.None
			continue
		}
		pp.Recommendation = rec
	}
}

// ResolveVersions runs the version-arithmetic part of phase 4: computes
// NextVersion for every non-Skip project with a non-None recommendation,
// using config.Bump.InitialTag for projects with no current version. Skip
// projects keep an empty NextVersion.
func (plan *Plan) ResolveVersions(cfg config.Config) error {
	for _, pp := range plan.Projects {
		if pp.Skip || pp.Recommendation == bump.None {
			continue
		}
		current, err := version.Parse(nonEmpty(pp.CurrentVersion, cfg.Bump.InitialTag))
		if err != nil {
			return fmt.Errorf("parsing current version %q for %s: %w", pp.CurrentVersion, pp.Name, err)
		}
		var next version.Semver
		switch pp.Recommendation {
		case bump.Major:
			next = current.BumpMajor()
		case bump.Minor:
			next = current.BumpMinor()
		default:
			next = current.BumpPatch()
		}
		pp.NextVersion = next.String()
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Apply runs the remainder of phase 4: rewrites each non-skip project's
// manifest to its NextVersion, cascades that new version into every
// dependent's internal-dependency literal, merges and writes each
// project's CHANGELOG.md section, and returns the assembled
// ReleaseManifest. It does not write the ReleaseManifest JSON file itself
// (callers decide the path and call manifest.Save). When writeManifests is
// false (the `release preview` path), no ecosystem manifest, dependency
// literal, or changelog file is touched and the returned ReleaseManifest
// describes what would happen.
//
// Projects are visited in topological order (dependencies before
// dependents) so a dependency's NextVersion is always already resolved by
// the time its dependents' manifests are rewritten.
func (plan *Plan) Apply(p *Planner, builder changelog.Builder, createdBy, baseBranch string, now time.Time, writeManifests bool) (manifest.ReleaseManifest, error) {
	byID := make(map[projectgraph.ID]*ProjectPlan, len(plan.Projects))
	for _, pp := range plan.Projects {
		byID[pp.ID] = pp
	}

	order, err := plan.graph.Toposorted()
	if err != nil {
		return manifest.ReleaseManifest{}, fmt.Errorf("topologically sorting project graph: %w", err)
	}

	var releases []manifest.ProjectRelease

	for _, id := range order {
		pp := byID[id]
		if pp == nil || pp.Recommendation == bump.None {
			continue
		}

		if !pp.Skip && writeManifests {
			rewriter, ok := p.reg.Rewriter(pp.Ecosystem)
			if !ok {
				return manifest.ReleaseManifest{}, fmt.Errorf("no rewriter registered for ecosystem %s (project %s)", pp.Ecosystem, pp.Name)
			}
			if err := rewriter.RewriteVersion(pp.ManifestPath, pp.NextVersion); err != nil {
				return manifest.ReleaseManifest{}, fmt.Errorf("rewriting %s: %w", pp.ManifestPath, err)
			}

			for _, dependentID := range plan.graph.Dependents(id) {
				dependent := byID[dependentID]
				if dependent == nil || dependent.Skip {
					continue
				}
				depRewriter, ok := p.reg.DependencyRewriter(dependent.Ecosystem)
				if !ok {
					// Ecosystem has no dependency-literal rewrite (PyPA,
					// Elixir, csproj, Go); leave the dependent untouched.
					continue
				}
				if err := depRewriter.RewriteDependencyVersion(dependent.ManifestPath, pp.Name, pp.NextVersion); err != nil {
					return manifest.ReleaseManifest{}, fmt.Errorf("rewriting %s's reference to %s: %w", dependent.Name, pp.Name, err)
				}
			}
		}

		section := builder.RenderSection(pp.NextVersion, now.Format("2006-01-02"), pp.CategorizedLogs)

		if writeManifests {
			changelogPath := filepath.Join(filepath.Dir(pp.ManifestPath), p.cfg.Changelog.Output)
			existing, err := os.ReadFile(changelogPath)
			if err != nil && !os.IsNotExist(err) {
				return manifest.ReleaseManifest{}, fmt.Errorf("reading %s: %w", changelogPath, err)
			}
			merged := builder.Merge(string(existing), pp.NextVersion, section)
			if err := atomicfile.Write(changelogPath, []byte(merged), 0o644); err != nil {
				return manifest.ReleaseManifest{}, fmt.Errorf("writing %s: %w", changelogPath, err)
			}
		}

		pr := manifest.NewProjectRelease(
			pp.Name,
			string(pp.Ecosystem),
			pp.CurrentVersion,
			pp.NextVersion,
			pp.Recommendation.String(),
			tagPrefixFor(pp.Name),
		).WithStatistics(statisticsFor(pp))
		pr.Changelog = section
		releases = append(releases, pr)
	}

	sort.Slice(releases, func(i, j int) bool { return releases[i].Name < releases[j].Name })

	return manifest.New(createdBy, baseBranch, now, releases), nil
}

func statisticsFor(pp *ProjectPlan) manifest.Statistics {
	var stats manifest.Statistics
	stats.CommitCount = len(pp.Commits)
	for _, c := range pp.CategorizedLogs {
		if c.Breaking {
			stats.BreakingChangesCount++
		}
		if c.Category == changelog.Added {
			stats.FeaturesCount++
		}
		if c.Category == changelog.Fixed {
			stats.FixesCount++
		}
	}
	return stats
}
