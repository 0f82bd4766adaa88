package ecosystem

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ilblu/belaf/internal/belerr"
	"github.com/ilblu/belaf/internal/repopath"
)

// MaxManifestBytes is the file-size guard applied before any manifest is
// parsed, per the engine's FileTooLarge invariant.
const MaxManifestBytes = 10 * 1024 * 1024

// skipDirs are directory names never descended into regardless of
// .gitignore content — build output and dependency vendor directories that
// would otherwise make discovery slow or produce false-positive nested
// manifests (e.g. a vendored node_modules package.json).
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"_build":       true,
	"deps":         true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"__pycache__":  true,
}

// Found is one discovered project, with its manifest already parsed.
type Found struct {
	Descriptor
	Kind Kind
	Dir  repopath.Path
}

// Discover walks root looking for ecosystem manifests, skipping skipDirs.
// A directory may match more than one ecosystem (e.g. a Node package that
// also ships a .csproj for a native addon); every match is reported. ignore
// is a list of repo-relative path prefixes (from Configuration.Project) to
// skip entirely.
func Discover(reg *Registry, root string, ignore []string) ([]Found, error) {
	var found []Found
	loaders := reg.Loaders()

	gitignore, err := loadGitignore(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(absPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if absPath != root && skipDirs[name] {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, absPath)
		if err != nil {
			return fmt.Errorf("computing relative path for %s: %w", absPath, err)
		}
		relPath, err := repopath.New(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("invalid discovered path %q: %w", rel, err)
		}
		if absPath != root && gitignoreMatches(gitignore, relPath.String(), true) {
			return filepath.SkipDir
		}
		for _, prefix := range ignore {
			ignorePath, err := repopath.New(prefix)
			if err == nil && relPath.HasPrefix(ignorePath) {
				return filepath.SkipDir
			}
		}

		for _, loader := range loaders {
			manifestPath, ok := loader.Detect(absPath)
			if !ok {
				continue
			}
			if err := guardFileSize(manifestPath); err != nil {
				return err
			}
			desc, err := loader.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("loading %s manifest at %s: %w", loader.Kind(), manifestPath, err)
			}
			manifestRel, err := filepath.Rel(root, manifestPath)
			if err == nil {
				if p, err := repopath.New(filepath.ToSlash(manifestRel)); err == nil {
					desc.ManifestPath = p
				}
			}
			found = append(found, Found{Descriptor: desc, Kind: loader.Kind(), Dir: relPath})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// loadGitignore reads root/.gitignore, if present, returning its
// non-comment, non-blank patterns. Only the repository-root .gitignore is
// consulted; nested .gitignore files are not merged, covering the common
// monorepo case of one ignore file at the root without implementing Git's
// full per-directory precedence rules.
func loadGitignore(root string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// gitignoreMatches reports whether relPath (slash-separated, relative to
// root) is ignored by any of patterns, matching each pattern against both
// the full relative path and its base name via filepath.Match's glob
// semantics. This is a minimal subset of Git's ignore grammar (no
// negation, no "**", no directory-scoped anchoring beyond a leading "/"),
// enough to keep generated output out of discovery when skipDirs' fixed
// list doesn't already cover it.
func gitignoreMatches(patterns []string, relPath string, isDir bool) bool {
	base := path.Base(relPath)
	for _, pat := range patterns {
		dirOnly := strings.HasSuffix(pat, "/")
		pat = strings.TrimSuffix(pat, "/")
		if dirOnly && !isDir {
			continue
		}
		anchored := strings.HasPrefix(pat, "/")
		pat = strings.TrimPrefix(pat, "/")
		if ok, _ := filepath.Match(pat, relPath); ok {
			return true
		}
		if anchored {
			continue
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func guardFileSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("statting %s: %w", path, err)
	}
	if info.Size() > MaxManifestBytes {
		return belerr.Wrap(belerr.FileTooLarge, nil, "%s is %d bytes, exceeding the %d byte guard", path, info.Size(), MaxManifestBytes)
	}
	return nil
}
