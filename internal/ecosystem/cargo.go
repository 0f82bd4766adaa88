package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/ilblu/belaf/internal/atomicfile"
)

type cargoEcosystem struct{}

func (cargoEcosystem) Kind() Kind { return Cargo }

func (cargoEcosystem) Detect(absDir string) (string, bool) {
	p := filepath.Join(absDir, "Cargo.toml")
	info, err := os.Stat(p)
	if err != nil {
		return "", false
	}
	if info.Size() > MaxManifestBytes {
		// Reported without parsing, so Discover's size guard rejects it.
		return p, true
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	var probe struct {
		Package map[string]interface{} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &probe); err != nil || probe.Package == nil {
		return "", false
	}
	return p, true
}

type cargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// cargoDependency accepts either a bare version string or a table with a
// "version" key (path/workspace dependencies without a version are
// ignored), matching Cargo.toml's dependency grammar.
type cargoDependency struct {
	Version string
	isTable bool
}

func (d *cargoDependency) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case string:
		d.Version = t
	case map[string]interface{}:
		d.isTable = true
		if ver, ok := t["version"].(string); ok {
			d.Version = ver
		}
	}
	return nil
}

func (cargoEcosystem) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading Cargo.toml: %w", err)
	}
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Descriptor{}, fmt.Errorf("parsing Cargo.toml at %s: %w", manifestAbsPath, err)
	}

	deps := make([]Dependency, 0, len(m.Dependencies))
	for name, raw := range m.Dependencies {
		var d cargoDependency
		_ = d.UnmarshalTOML(raw)
		if d.Version == "" {
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: d.Version})
	}

	return Descriptor{
		Name:         m.Package.Name,
		Version:      m.Package.Version,
		Dependencies: deps,
	}, nil
}

// cargoVersionLineRex matches the version key within a [package] table.
// Rewriting is line-oriented rather than a marshal round-trip so comments,
// key order, and formatting elsewhere in the file are untouched.
var cargoVersionLineRex = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)"([^"]*)"`)

func (cargoEcosystem) RewriteVersion(manifestAbsPath string, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading Cargo.toml: %w", err)
	}

	packageStart := findTableStart(string(data), "[package]")
	if packageStart < 0 {
		return fmt.Errorf("Cargo.toml at %s has no [package] table", manifestAbsPath)
	}
	packageBody, bodyStart := sliceTableBody(string(data), packageStart)

	if !cargoVersionLineRex.MatchString(packageBody) {
		return fmt.Errorf("Cargo.toml at %s has no version field in [package]", manifestAbsPath)
	}
	newBody := cargoVersionLineRex.ReplaceAllString(packageBody, `${1}"`+newVersion+`"`)
	newContent := string(data)[:bodyStart] + newBody + string(data)[bodyStart+len(packageBody):]

	info, err := os.Stat(manifestAbsPath)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return atomicfile.Write(manifestAbsPath, []byte(newContent), mode)
}

// depLineRexFor matches depName's whole declaration line within a
// [dependencies] table body, whether it's a bare string ("dep = \"1.0\"")
// or an inline table ("dep = { path = \"../dep\", version = \"1.0\" }").
func depLineRexFor(depName string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(depName) + `\s*=.*$`)
}

var depVersionKeyRex = regexp.MustCompile(`(version\s*=\s*)"[^"]*"`)
var depBareValueRex = regexp.MustCompile(`=\s*"[^"]*"(\s*(?:#.*)?)$`)

// RewriteDependencyVersion updates depName's declared version within
// manifestAbsPath's [dependencies] table to newVersion, preserving any
// other keys (path, features) on an inline-table dependency. A path-only
// dependency with no version key is left untouched and reported as an
// error, since there is nothing to cascade.
func (cargoEcosystem) RewriteDependencyVersion(manifestAbsPath, depName, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading Cargo.toml: %w", err)
	}
	content := string(data)

	depsStart := findTableStart(content, "[dependencies]")
	if depsStart < 0 {
		return fmt.Errorf("Cargo.toml at %s has no [dependencies] table", manifestAbsPath)
	}
	depsBody, bodyStart := sliceTableBody(content, depsStart)

	loc := depLineRexFor(depName).FindStringIndex(depsBody)
	if loc == nil {
		return fmt.Errorf("Cargo.toml at %s has no dependency %q in [dependencies]", manifestAbsPath, depName)
	}
	line := depsBody[loc[0]:loc[1]]

	var newLine string
	switch {
	case depVersionKeyRex.MatchString(line):
		newLine = depVersionKeyRex.ReplaceAllString(line, `${1}"`+newVersion+`"`)
	case depBareValueRex.MatchString(line):
		newLine = depBareValueRex.ReplaceAllString(line, `= "`+newVersion+`"${1}`)
	default:
		return fmt.Errorf("Cargo.toml at %s dependency %q has no version to rewrite (path-only dependency)", manifestAbsPath, depName)
	}

	newBody := depsBody[:loc[0]] + newLine + depsBody[loc[1]:]
	newContent := content[:bodyStart] + newBody + content[bodyStart+len(depsBody):]

	info, err := os.Stat(manifestAbsPath)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return atomicfile.Write(manifestAbsPath, []byte(newContent), mode)
}

// findTableStart returns the byte offset of the line beginning with header
// (e.g. "[package]"), or -1 if absent.
func findTableStart(content, header string) int {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(header) + `\s*$`)
	loc := re.FindStringIndex(content)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// sliceTableBody returns the text of the table starting at tableStart (the
// table header line) up to (but not including) the next top-level "[...]"
// header, plus the byte offset where that slice begins in content.
func sliceTableBody(content string, tableStart int) (string, int) {
	rest := content[tableStart:]
	nextHeaderRex := regexp.MustCompile(`(?m)^\[`)
	// Skip the current header line itself before searching for the next one.
	firstNewline := indexByte(rest, '\n')
	if firstNewline < 0 {
		return rest, tableStart
	}
	tail := rest[firstNewline+1:]
	loc := nextHeaderRex.FindStringIndex(tail)
	if loc == nil {
		return rest, tableStart
	}
	end := firstNewline + 1 + loc[0]
	return rest[:end], tableStart
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
