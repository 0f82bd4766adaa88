package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ilblu/belaf/internal/repopath"
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

	writeAndCommit := func(path, content, msg string) {
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

	writeAndCommit("services/api/main.go", "package main\n", "feat: init api")
	writeAndCommit("services/web/main.go", "package main\n", "feat: init web")
	writeAndCommit("services/api/handler.go", "package main\n", "fix(api): handle edge case")

	return dir
}

func TestTreeTouchesPrefix(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(dir, 64, 64)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	head, err := repo.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}

	touched, err := repo.TreeTouchesPrefix(head, repopath.MustNew("services/api"))
	if err != nil {
		t.Fatalf("TreeTouchesPrefix: %v", err)
	}
	if !touched {
		t.Error("expected HEAD commit to touch services/api")
	}

	touchedWeb, err := repo.TreeTouchesPrefix(head, repopath.MustNew("services/web"))
	if err != nil {
		t.Fatalf("TreeTouchesPrefix: %v", err)
	}
	if touchedWeb {
		t.Error("HEAD commit should not touch services/web")
	}
}

func TestLastReleaseTagFallsBackToBaseline(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(dir, 64, 64)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, _, _, ok, err := repo.LastReleaseTag("api"); err != nil || ok {
		t.Fatalf("expected no tag before any exists, got ok=%v err=%v", ok, err)
	}

	if err := repo.CreateBaselineTag(); err != nil {
		t.Fatalf("CreateBaselineTag: %v", err)
	}
	// Idempotent: calling again must not error or create a duplicate.
	if err := repo.CreateBaselineTag(); err != nil {
		t.Fatalf("second CreateBaselineTag: %v", err)
	}

	name, _, _, ok, err := repo.LastReleaseTag("api")
	if err != nil {
		t.Fatalf("LastReleaseTag: %v", err)
	}
	if !ok || name != BaselineTag {
		t.Fatalf("LastReleaseTag = %q, %v, want fallback to %q", name, ok, BaselineTag)
	}

	head, err := repo.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}

	// Tag "api/v1.0.0" must now take precedence over the baseline.
	if err := repo.CreateBaselineTag(); err != nil {
		t.Fatalf("CreateBaselineTag: %v", err)
	}
	if _, err := repo.repo.CreateTag("api/v1.0.0", head, nil); err != nil {
		t.Fatalf("creating version tag: %v", err)
	}
	name, v, _, ok, err := repo.LastReleaseTag("api")
	if err != nil {
		t.Fatalf("LastReleaseTag: %v", err)
	}
	if !ok || name != "api/v1.0.0" || v.String() != "1.0.0" {
		t.Fatalf("LastReleaseTag = %q %v %v, want api/v1.0.0 1.0.0", name, v, ok)
	}
}

func TestCommitsSinceWalksHistory(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(dir, 0, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	head, err := repo.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}

	commits, err := repo.CommitsSince(plumbing.ZeroHash, head)
	if err != nil {
		t.Fatalf("CommitsSince: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}
}
