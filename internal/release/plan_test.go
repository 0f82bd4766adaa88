package release

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"

	"github.com/ilblu/belaf/internal/bump"
	"github.com/ilblu/belaf/internal/changelog"
	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/ecosystem"
	"github.com/ilblu/belaf/internal/gitrepo"
)

func writeAndCommit(t *testing.T, wt *git.Worktree, dir, path, content, msg string) {
	t.Helper()
	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(path); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}
	if _, err := wt.Commit(msg, &git.CommitOptions{Author: sig}); err != nil {
		t.Fatal(err)
	}
}

func TestPlannerCascadesBumpToDependent(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	writeAndCommit(t, wt, dir, "libs/core/Cargo.toml",
		"[package]\nname = \"core\"\nversion = \"1.0.0\"\n", "feat: init core")
	writeAndCommit(t, wt, dir, "services/api/Cargo.toml",
		"[package]\nname = \"api\"\nversion = \"1.0.0\"\n\n[dependencies]\ncore = \"1.0.0\"\n", "feat: init api")

	gr, err := gitrepo.Open(dir, 64, 64)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	// Tag the repository's bootstrap point before any further changes, so
	// the Attribute phase only considers commits after this baseline (both
	// projects fall back to it since neither has its own release tag yet).
	if err := gr.CreateBaselineTag(); err != nil {
		t.Fatalf("tagging baseline: %v", err)
	}

	writeAndCommit(t, wt, dir, "libs/core/src/lib.rs", "// fix\n", "fix(core): correct edge case")

	head, err := gr.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}

	reg := ecosystem.NewRegistry()
	cfg := config.Default()
	log := logrus.New()
	log.SetOutput(os.Stderr)

	planner := New(gr, reg, cfg, log, dir)
	plan, err := planner.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plan.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d: %+v", len(plan.Projects), plan.Projects)
	}

	if err := plan.Attribute(planner, head); err != nil {
		t.Fatalf("Attribute: %v", err)
	}

	var core, api *ProjectPlan
	for _, pp := range plan.Projects {
		switch pp.Name {
		case "core":
			core = pp
		case "api":
			api = pp
		}
	}
	if core == nil || api == nil {
		t.Fatalf("expected both core and api projects, got %+v", plan.Projects)
	}
	if core.Recommendation != bump.Patch {
		t.Errorf("core recommendation = %v, want Patch", core.Recommendation)
	}
	if api.Recommendation != bump.None {
		t.Errorf("api recommendation before cascade = %v, want None", api.Recommendation)
	}

	if err := plan.Cascade(); err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	if api.Recommendation != bump.Patch {
		t.Errorf("api recommendation after cascade = %v, want Patch (cascaded from core)", api.Recommendation)
	}

	if err := plan.ResolveVersions(cfg); err != nil {
		t.Fatalf("ResolveVersions: %v", err)
	}
	if core.NextVersion != "1.0.1" {
		t.Errorf("core NextVersion = %q, want 1.0.1", core.NextVersion)
	}
	if api.NextVersion != "1.0.1" {
		t.Errorf("api NextVersion = %q, want 1.0.1", api.NextVersion)
	}

	builder := changelog.NewBuilder()
	rm, err := plan.Apply(planner, builder, "belaf", "main", time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC), true)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(rm.Releases) != 2 {
		t.Fatalf("expected 2 releases in manifest, got %d", len(rm.Releases))
	}

	rewritten, err := os.ReadFile(filepath.Join(dir, "libs", "core", "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(rewritten), `version = "1.0.1"`) {
		t.Errorf("core Cargo.toml not rewritten: %s", rewritten)
	}

	apiManifest, err := os.ReadFile(filepath.Join(dir, "services", "api", "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(apiManifest), `version = "1.0.1"`) {
		t.Errorf("api Cargo.toml own version not rewritten: %s", apiManifest)
	}
	if !contains(string(apiManifest), `core = "1.0.1"`) {
		t.Errorf("api Cargo.toml's core dependency literal not cascaded: %s", apiManifest)
	}

	coreChangelog, err := os.ReadFile(filepath.Join(dir, "libs", "core", "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("reading core CHANGELOG.md: %v", err)
	}
	if !contains(string(coreChangelog), "## [1.0.1]") {
		t.Errorf("core CHANGELOG.md missing new section: %s", coreChangelog)
	}
	if _, err := os.Stat(filepath.Join(dir, "services", "api", "CHANGELOG.md")); err != nil {
		t.Errorf("expected api CHANGELOG.md to be written: %v", err)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
