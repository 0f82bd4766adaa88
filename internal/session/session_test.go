package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"

	"github.com/ilblu/belaf/internal/gitrepo"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	manifestPath := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(manifestPath, []byte("[package]\nname = \"core\"\nversion = \"1.0.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("Cargo.toml"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}
	if _, err := wt.Commit("feat: init", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBootstrapWritesConfigBootstrapAndBaselineTag(t *testing.T) {
	dir := initTestRepo(t)
	log := logrus.New()
	log.SetOutput(os.Stderr)

	sess, err := Open(dir, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result, err := sess.Bootstrap()
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(result.Projects) != 1 || result.Projects[0] != "core" {
		t.Fatalf("Projects = %+v, want [core]", result.Projects)
	}
	if result.BaselineTag != gitrepo.BaselineTag {
		t.Errorf("BaselineTag = %q, want %q", result.BaselineTag, gitrepo.BaselineTag)
	}

	if _, err := os.Stat(result.ConfigPath); err != nil {
		t.Errorf("expected config file at %s: %v", result.ConfigPath, err)
	}
	bootstrapData, err := os.ReadFile(result.BootstrapPath)
	if err != nil {
		t.Fatalf("reading bootstrap.toml: %v", err)
	}
	content := string(bootstrapData)
	if !containsAll(content, `qnames`, `"core"`, `version = "1.0.0"`, `release_commit`) {
		t.Errorf("bootstrap.toml missing expected fields:\n%s", content)
	}

	if _, _, _, ok, err := sess.Repo.LastReleaseTag("core"); err != nil || !ok {
		t.Fatalf("expected baseline tag to resolve for core, ok=%v err=%v", ok, err)
	}

	// Re-running Bootstrap must not fail on the already-existing baseline tag.
	if _, err := sess.Bootstrap(); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
}

func containsAll(haystack string, needles ...string) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
