// Package session bundles the open Repository, loaded Configuration, and
// ecosystem Registry a CLI command needs, and exposes the top-level
// operations (PlanRelease, Bootstrap) that drive the release package.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/ilblu/belaf/internal/atomicfile"
	"github.com/ilblu/belaf/internal/bump"
	"github.com/ilblu/belaf/internal/changelog"
	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/ecosystem"
	"github.com/ilblu/belaf/internal/gitrepo"
	"github.com/ilblu/belaf/internal/manifest"
	"github.com/ilblu/belaf/internal/release"
)

// BootstrapPath is the repository-relative location of the bootstrap
// manifest Bootstrap() writes, recording each discovered project's state
// at adoption time.
const BootstrapPath = "belaf/bootstrap.toml"

// bootstrapFile is belaf/bootstrap.toml's schema: one project entry per
// discovered project, keyed by its qualified names: QNames holds the
// project name followed by its ecosystem tag (e.g. ["core", "cargo"]).
type bootstrapFile struct {
	Project []bootstrapProjectEntry `toml:"project"`
}

type bootstrapProjectEntry struct {
	QNames        []string `toml:"qnames"`
	Version       string   `toml:"version"`
	ReleaseCommit string   `toml:"release_commit,omitempty"`
}

// BootstrapResult reports what Bootstrap() wrote and tagged.
type BootstrapResult struct {
	ConfigPath    string
	BootstrapPath string
	BaselineTag   string
	Projects      []string
}

func writeConfigFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return atomicfile.Write(path, data, 0o644)
}

// Session is the open handle to one repository's release engine state.
type Session struct {
	Repo   *gitrepo.Repository
	Config config.Config
	Reg    *ecosystem.Registry
	Log    *logrus.Logger
}

// Open opens the repository at dir, loads its configuration overlay, and
// builds the ecosystem registry.
func Open(dir string, log *logrus.Logger) (*Session, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	repo, err := gitrepo.Open(dir, cfg.Repo.Analysis.CommitCacheSize, cfg.Repo.Analysis.TreeCacheSize)
	if err != nil {
		return nil, err
	}

	return &Session{
		Repo:   repo,
		Config: cfg,
		Reg:    ecosystem.NewRegistry(),
		Log:    log,
	}, nil
}

// PlanResult is the outcome of a full release planning run: the manifest
// that would be (or was) written, plus the per-project plans for CLI
// preview rendering.
type PlanResult struct {
	Manifest manifest.ReleaseManifest
	Plan     *release.Plan
}

// PlanRelease runs all four ReleasePlanner phases against the session's
// repository. When writeManifests is true, each recommended project's
// ecosystem manifest is rewritten in place as part of the run (the
// ReleaseManifest JSON itself is never written here; call SaveManifest for
// that). When false, nothing on disk is touched and the returned
// PlanResult describes what a real run would do.
func (s *Session) PlanRelease(baseBranch, createdBy string, now time.Time, writeManifests bool) (PlanResult, error) {
	planner := release.New(s.Repo, s.Reg, s.Config, s.Log, s.Repo.Root())

	plan, err := planner.Discover()
	if err != nil {
		return PlanResult{}, err
	}

	head, err := s.Repo.HeadCommit()
	if err != nil {
		return PlanResult{}, err
	}

	if err := plan.Attribute(planner, head); err != nil {
		return PlanResult{}, err
	}
	if err := plan.Cascade(); err != nil {
		return PlanResult{}, err
	}
	if err := plan.ResolveVersions(s.Config); err != nil {
		return PlanResult{}, err
	}

	rm, err := plan.Apply(planner, changelog.NewBuilder(), createdBy, baseBranch, now, writeManifests)
	if err != nil {
		return PlanResult{}, err
	}

	return PlanResult{Manifest: rm, Plan: plan}, nil
}

// PlanReleaseWithOverrides runs the same discovery/attribution/apply
// phases as PlanRelease, but replaces the commit-driven Cascade with an
// explicit per-project {name: bump} override: named projects bump exactly
// as specified, and every unnamed project is skipped unconditionally (no
// cascade is applied to it, even if one of its dependencies is releasing).
func (s *Session) PlanReleaseWithOverrides(baseBranch, createdBy string, now time.Time, writeManifests bool, overrides map[string]bump.Recommendation) (PlanResult, error) {
	planner := release.New(s.Repo, s.Reg, s.Config, s.Log, s.Repo.Root())

	plan, err := planner.Discover()
	if err != nil {
		return PlanResult{}, err
	}

	head, err := s.Repo.HeadCommit()
	if err != nil {
		return PlanResult{}, err
	}

	if err := plan.Attribute(planner, head); err != nil {
		return PlanResult{}, err
	}
	plan.ApplyOverrides(overrides)
	if err := plan.ResolveVersions(s.Config); err != nil {
		return PlanResult{}, err
	}

	rm, err := plan.Apply(planner, changelog.NewBuilder(), createdBy, baseBranch, now, writeManifests)
	if err != nil {
		return PlanResult{}, err
	}

	return PlanResult{Manifest: rm, Plan: plan}, nil
}

// BeginCIRelease starts the CI-mode release flow described in
// SPEC_FULL.md §4.8/§6: it refuses unconditionally if the working tree is
// dirty (no override, unlike the interactive `release plan` path), then
// creates and checks out a release/<UTC timestamp> branch off HEAD,
// returning the branch name.
func (s *Session) BeginCIRelease(now time.Time) (string, error) {
	dirty, err := s.Repo.IsDirty()
	if err != nil {
		return "", err
	}
	if dirty {
		return "", fmt.Errorf("refusing to start a CI release: working tree has uncommitted changes")
	}
	branch := "release/" + now.UTC().Format("20060102-150405")
	if err := s.Repo.CreateAndCheckoutBranch(branch); err != nil {
		return "", err
	}
	return branch, nil
}

// SaveManifest writes result.Manifest to belaf/releases/<generated-name>.json
// under the repository root, returning the path written.
func (s *Session) SaveManifest(result PlanResult, now time.Time) (string, error) {
	filename := manifest.GenerateFilename(now)
	dir := s.Repo.Root() + "/" + manifest.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := dir + "/" + filename
	if err := manifest.Save(path, result.Manifest); err != nil {
		return "", err
	}
	return path, nil
}

// Bootstrap performs the first-time discovery pass described in
// SPEC_FULL.md §4.8: writes a default belaf/config.toml seeded with the
// repository's upstream URL, writes belaf/bootstrap.toml recording every
// discovered project's current state, and tags HEAD with the single
// BaselineTag so the first real release only contains commits made after
// bootstrap.
func (s *Session) Bootstrap() (BootstrapResult, error) {
	planner := release.New(s.Repo, s.Reg, s.Config, s.Log, s.Repo.Root())
	plan, err := planner.Discover()
	if err != nil {
		return BootstrapResult{}, err
	}

	cfg := config.Default()
	if url, err := s.Repo.UpstreamURL(); err == nil {
		cfg.Repo.UpstreamURLs = []string{url}
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return BootstrapResult{}, err
	}
	configPath := s.Repo.Root() + "/" + config.Path
	if err := writeConfigFile(configPath, data); err != nil {
		return BootstrapResult{}, err
	}

	head, err := s.Repo.HeadCommit()
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("resolving HEAD: %w", err)
	}

	var projects []string
	entries := make([]bootstrapProjectEntry, 0, len(plan.Projects))
	for _, pp := range plan.Projects {
		entries = append(entries, bootstrapProjectEntry{
			QNames:        []string{pp.Name, string(pp.Ecosystem)},
			Version:       nonEmptyVersion(pp.CurrentVersion, s.Config.Bump.InitialTag),
			ReleaseCommit: head.String(),
		})
		projects = append(projects, pp.Name)
	}

	bootstrapData, err := toml.Marshal(bootstrapFile{Project: entries})
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("marshaling bootstrap manifest: %w", err)
	}
	bootstrapPath := s.Repo.Root() + "/" + BootstrapPath
	if err := writeConfigFile(bootstrapPath, bootstrapData); err != nil {
		return BootstrapResult{}, err
	}

	if err := s.Repo.CreateBaselineTag(); err != nil {
		return BootstrapResult{}, fmt.Errorf("tagging baseline: %w", err)
	}

	return BootstrapResult{
		ConfigPath:    configPath,
		BootstrapPath: bootstrapPath,
		BaselineTag:   gitrepo.BaselineTag,
		Projects:      projects,
	}, nil
}

func nonEmptyVersion(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
