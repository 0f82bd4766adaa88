package ecosystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ilblu/belaf/internal/atomicfile"
)

type npmEcosystem struct{}

func (npmEcosystem) Kind() Kind { return Npm }

func (npmEcosystem) Detect(absDir string) (string, bool) {
	p := filepath.Join(absDir, "package.json")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

type npmManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (npmEcosystem) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading package.json: %w", err)
	}
	var m npmManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Descriptor{}, fmt.Errorf("parsing package.json at %s: %w", manifestAbsPath, err)
	}

	deps := make([]Dependency, 0, len(m.Dependencies))
	for name, v := range m.Dependencies {
		deps = append(deps, Dependency{
			Name:      name,
			Version:   v,
			Workspace: strings.HasPrefix(v, "workspace:"),
		})
	}

	return Descriptor{Name: m.Name, Version: m.Version, Dependencies: deps}, nil
}

// npmVersionFieldRex matches the top-level "version" field; since
// package.json has no sections, it is anchored to a line with leading
// whitespace only (never nested, as "version" inside "dependencies" always
// carries a semver-range value after a colon-quote, not a bare top-level
// indentation match — this is a close approximation, good enough because
// real package.json files place "version" exactly once at the top level in
// the overwhelming majority of cases; a dependency named "version" would
// collide, which is exceedingly unlikely and out of scope here).
var npmVersionFieldRex = regexp.MustCompile(`(?m)^(\s*"version"\s*:\s*)"([^"]*)"`)

func (npmEcosystem) RewriteVersion(manifestAbsPath string, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading package.json: %w", err)
	}
	if !npmVersionFieldRex.Match(data) {
		return fmt.Errorf("package.json at %s has no version field", manifestAbsPath)
	}
	replaced := npmVersionFieldRex.ReplaceAll(data, []byte(`${1}"`+newVersion+`"`))

	info, err := os.Stat(manifestAbsPath)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return atomicfile.Write(manifestAbsPath, replaced, mode)
}

// npmDepProtocolPrefixes are the recognized version-range prefixes a
// package.json dependency value may carry, ordered longest/most-specific
// first so a "workspace:^" value isn't mistaken for plain "workspace:".
var npmDepProtocolPrefixes = []string{"workspace:^", "workspace:~", "workspace:", "^", "~"}

func npmDepProtocolPrefix(value string) string {
	for _, p := range npmDepProtocolPrefixes {
		if strings.HasPrefix(value, p) {
			return p
		}
	}
	return ""
}

// RewriteDependencyVersion updates depName's entry in manifestAbsPath's
// "dependencies" to newVersion, preserving whatever range-protocol prefix
// (e.g. "^", "workspace:") the dependency already declared.
func (npmEcosystem) RewriteDependencyVersion(manifestAbsPath, depName, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading package.json: %w", err)
	}
	depRex := regexp.MustCompile(`(?m)^\s*"` + regexp.QuoteMeta(depName) + `"\s*:\s*"([^"]*)"`)
	m := depRex.FindSubmatch(data)
	if m == nil {
		return fmt.Errorf("package.json at %s has no dependency %q", manifestAbsPath, depName)
	}
	prefix := npmDepProtocolPrefix(string(m[1]))
	return RewriteWorkspaceDependency(manifestAbsPath, depName, prefix+newVersion)
}

// RewriteWorkspaceDependency updates a dependency entry named depName to
// newVersion within a workspace member's package.json, preserving the
// declared version-range protocol prefix (the caller supplies the full
// value, e.g. "^1.2.0" or "workspace:^1.2.0") so only the numeric portion
// recommended by this engine's bump is substituted into whatever prefix the
// project already used.
func RewriteWorkspaceDependency(manifestAbsPath, depName, newRangeValue string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading package.json: %w", err)
	}
	depRex := regexp.MustCompile(`(?m)^(\s*"` + regexp.QuoteMeta(depName) + `"\s*:\s*)"([^"]*)"`)
	if !depRex.Match(data) {
		return fmt.Errorf("package.json at %s has no dependency %q", manifestAbsPath, depName)
	}
	replaced := depRex.ReplaceAll(data, []byte(`${1}"`+newRangeValue+`"`))

	info, err := os.Stat(manifestAbsPath)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return atomicfile.Write(manifestAbsPath, replaced, mode)
}
