// Package gitrepo wraps go-git/go-git/v5 behind the Repository operations
// the engine needs: commit walking, tag resolution, tree-diff path
// attribution, and dirty/remote checks. tree_touches_prefix is grounded on
// the pack's s0ders-go-semver-release parser.go commitContainsProjectFiles,
// which diffs a commit's tree against its first parent's tree via
// object.DiffTree and checks changed-file directories against a path
// prefix.
package gitrepo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ilblu/belaf/internal/belerr"
	"github.com/ilblu/belaf/internal/repopath"
	"github.com/ilblu/belaf/internal/version"
)

// Commit is the subset of a Git commit the engine cares about.
type Commit struct {
	Hash    plumbing.Hash
	Message string
}

// Repository adapts a go-git repository to the operations
// HistoryAnalyzer, BumpAnalyzer, and ReleasePlanner need.
type Repository struct {
	repo       *git.Repository
	root       string
	commitByID *lru.Cache[plumbing.Hash, Commit]
	touches    *lru.Cache[touchesKey, bool]
}

type touchesKey struct {
	hash   plumbing.Hash
	prefix string
}

// Open opens the Git repository containing dir (searching parent
// directories, like `git rev-parse --show-toplevel`). commitCacheSize and
// treeCacheSize bound the two LRU caches; pass 0 to disable caching.
func Open(dir string, commitCacheSize, treeCacheSize int) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, belerr.Wrap(belerr.NotARepository, err, "opening git repository at %s", dir)
	}
	wt, err := repo.Worktree()
	root := dir
	if err == nil {
		root = wt.Filesystem.Root()
	}

	r := &Repository{repo: repo, root: root}
	if commitCacheSize > 0 {
		c, err := lru.New[plumbing.Hash, Commit](commitCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating commit cache: %w", err)
		}
		r.commitByID = c
	}
	if treeCacheSize > 0 {
		c, err := lru.New[touchesKey, bool](treeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating tree-diff cache: %w", err)
		}
		r.touches = c
	}
	return r, nil
}

// Root returns the repository's working tree root.
func (r *Repository) Root() string { return r.root }

// IsDirty reports whether the working tree has uncommitted changes.
func (r *Repository) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

// UpstreamURL returns the fetch URL of the "origin" remote, falling back to
// any other configured remote. It returns belerr.RemoteNotConfigured if
// none exists.
func (r *Repository) UpstreamURL() (string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return "", fmt.Errorf("listing remotes: %w", err)
	}
	var fallback string
	for _, remote := range remotes {
		urls := remote.Config().URLs
		if len(urls) == 0 {
			continue
		}
		if remote.Config().Name == "origin" {
			return urls[0], nil
		}
		if fallback == "" {
			fallback = urls[0]
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", belerr.Wrap(belerr.RemoteNotConfigured, nil, "no remote configured")
}

// HeadCommit returns the hash of HEAD.
func (r *Repository) HeadCommit() (plumbing.Hash, error) {
	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash(), nil
}

// CommitsSince returns, in newest-first order, the commits walked from `to`
// up to but not including the first commit equal to `from` (from may be
// the zero hash, meaning "all history"). The walk stops at `from`; it does
// not compute an exact reachability difference on histories with merges.
// Each commit is fetched through the commit cache when enabled.
func (r *Repository) CommitsSince(from, to plumbing.Hash) ([]Commit, error) {
	commitObj, err := r.repo.CommitObject(to)
	if err != nil {
		return nil, fmt.Errorf("resolving commit %s: %w", to, err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: to})
	if err != nil {
		return nil, fmt.Errorf("walking history from %s: %w", to, err)
	}
	defer iter.Close()

	var out []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == from {
			return storer.ErrStop
		}
		out = append(out, r.cachedCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}
	_ = commitObj
	return out, nil
}

func (r *Repository) cachedCommit(c *object.Commit) Commit {
	if r.commitByID != nil {
		if cached, ok := r.commitByID.Get(c.Hash); ok {
			return cached
		}
	}
	commit := Commit{Hash: c.Hash, Message: c.Message}
	if r.commitByID != nil {
		r.commitByID.Add(c.Hash, commit)
	}
	return commit
}

// TreeTouchesPrefix reports whether the commit at hash changed any file
// under prefix, by diffing its tree against its first parent's tree (the
// empty tree for a root commit). Results are memoized per (hash, prefix).
func (r *Repository) TreeTouchesPrefix(hash plumbing.Hash, prefix repopath.Path) (bool, error) {
	key := touchesKey{hash: hash, prefix: prefix.String()}
	if r.touches != nil {
		if cached, ok := r.touches.Get(key); ok {
			return cached, nil
		}
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return false, fmt.Errorf("resolving commit %s: %w", hash, err)
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return false, fmt.Errorf("getting tree for commit %s: %w", hash, err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return false, fmt.Errorf("getting parent of commit %s: %w", hash, err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return false, fmt.Errorf("getting parent tree for commit %s: %w", hash, err)
		}
	}

	changes, err := object.DiffTree(parentTree, commitTree)
	if err != nil {
		return false, fmt.Errorf("diffing trees for commit %s: %w", hash, err)
	}

	touched := false
	for _, change := range changes {
		for _, name := range []string{change.To.Name, change.From.Name} {
			if name == "" {
				continue
			}
			p, err := repopath.New(name)
			if err != nil {
				continue
			}
			if p.HasPrefix(prefix) {
				touched = true
				break
			}
		}
		if touched {
			break
		}
	}

	if r.touches != nil {
		r.touches.Add(key, touched)
	}
	return touched, nil
}

// tagCandidate pairs a parsed tag with its target commit hash.
type tagCandidate struct {
	name    string
	version version.Semver
	commit  plumbing.Hash
}

// BaselineTag is the single fixed tag name `belaf init` creates at a
// repository's adoption point, the last tier of LastReleaseTag's fallback
// for projects (or whole repositories) with no prior versioned release.
const BaselineTag = "belaf-baseline"

// LastReleaseTag resolves the commit a project's commit attribution
// should start from, via a three-tier fallback: a tag prefixed with
// prefix ("prefix/vX.Y.Z", this project's own release history), then an
// unprefixed "vX.Y.Z" tag (a single-project repository that never adopted
// prefixing), then the literal BaselineTag (the repository's bootstrap
// point, for a project with no release tag of its own yet). It returns
// ok=false only if none of the three exists.
func (r *Repository) LastReleaseTag(prefix string) (name string, v version.Semver, commit plumbing.Hash, ok bool, err error) {
	if prefix != "" {
		name, v, commit, ok, err = r.findVersionTag(prefix)
		if err != nil || ok {
			return name, v, commit, ok, err
		}
	}
	name, v, commit, ok, err = r.findVersionTag("")
	if err != nil || ok {
		return name, v, commit, ok, err
	}
	return r.findBaselineTag()
}

// findVersionTag returns the highest-versioned tag matching prefix (an
// empty prefix matches unprefixed "vX.Y.Z" tags), or ok=false if none
// exists.
func (r *Repository) findVersionTag(prefix string) (name string, v version.Semver, commit plumbing.Hash, ok bool, err error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return "", version.Semver{}, plumbing.ZeroHash, false, fmt.Errorf("listing tags: %w", err)
	}

	var candidates []tagCandidate
	walkErr := tagRefs.ForEach(func(ref *plumbing.Reference) error {
		short := ref.Name().Short()
		raw, matched := matchTagPrefix(short, prefix)
		if !matched {
			return nil
		}
		parsed, err := version.Parse(raw)
		if err != nil {
			return nil
		}
		commitHash, err := resolveTagCommit(r.repo, ref.Hash())
		if err != nil {
			return nil
		}
		candidates = append(candidates, tagCandidate{name: short, version: parsed, commit: commitHash})
		return nil
	})
	if walkErr != nil {
		return "", version.Semver{}, plumbing.ZeroHash, false, fmt.Errorf("iterating tags: %w", walkErr)
	}
	if len(candidates) == 0 {
		return "", version.Semver{}, plumbing.ZeroHash, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].version.Compare(candidates[j].version) > 0
	})
	best := candidates[0]
	return best.name, best.version, best.commit, true, nil
}

// matchTagPrefix reports whether tagName matches "prefix/vX.Y.Z" (or
// unprefixed "vX.Y.Z" when prefix is ""), returning the version part with
// its leading "v" kept (e.g. "v1.0.0"), which version.Parse accepts.
func matchTagPrefix(tagName, prefix string) (string, bool) {
	want := "v"
	if prefix != "" {
		want = prefix + "/v"
	}
	if !strings.HasPrefix(tagName, want) {
		return "", false
	}
	return strings.TrimPrefix(tagName, want[:len(want)-1]), true
}

func resolveTagCommit(repo *git.Repository, hash plumbing.Hash) (plumbing.Hash, error) {
	tagObj, err := repo.TagObject(hash)
	if err == nil {
		target, err := tagObj.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return target.Hash, nil
	}
	// Lightweight tag: hash already refers to a commit.
	if _, err := repo.CommitObject(hash); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// findBaselineTag resolves the literal BaselineTag, if it exists.
func (r *Repository) findBaselineTag() (name string, v version.Semver, commit plumbing.Hash, ok bool, err error) {
	ref, err := r.repo.Tag(BaselineTag)
	if err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return "", version.Semver{}, plumbing.ZeroHash, false, nil
		}
		return "", version.Semver{}, plumbing.ZeroHash, false, fmt.Errorf("resolving baseline tag: %w", err)
	}
	commitHash, err := resolveTagCommit(r.repo, ref.Hash())
	if err != nil {
		return "", version.Semver{}, plumbing.ZeroHash, false, fmt.Errorf("resolving baseline tag commit: %w", err)
	}
	return BaselineTag, version.Semver{}, commitHash, true, nil
}

// CreateAndCheckoutBranch creates name as a new branch at HEAD and checks
// it out, used by the CI release flow to cut a dedicated release/<ts>
// branch rather than committing version bumps directly to the base
// branch.
func (r *Repository) CreateAndCheckoutBranch(name string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	ref := plumbing.NewBranchReferenceName(name)
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(ref, head.Hash())); err != nil {
		return fmt.Errorf("creating branch %s: %w", name, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: ref}); err != nil {
		return fmt.Errorf("checking out branch %s: %w", name, err)
	}
	return nil
}

// CreateBaselineTag creates the lightweight BaselineTag at HEAD if it
// doesn't already exist; idempotent, since `belaf init` may be re-run
// against a repository it has already bootstrapped.
func (r *Repository) CreateBaselineTag() error {
	if _, err := r.repo.Tag(BaselineTag); err == nil {
		return nil
	} else if !errors.Is(err, git.ErrTagNotFound) {
		return fmt.Errorf("checking for existing baseline tag: %w", err)
	}
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	if _, err := r.repo.CreateTag(BaselineTag, head.Hash(), nil); err != nil {
		return fmt.Errorf("creating baseline tag: %w", err)
	}
	return nil
}
