package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type elixirEcosystem struct{}

func (elixirEcosystem) Kind() Kind { return Elixir }

func (elixirEcosystem) Detect(absDir string) (string, bool) {
	p := filepath.Join(absDir, "mix.exs")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

// mix.exs has no TOML/JSON grammar to parse; name and version are read
// from the first `app:`/`version:` matches anywhere in the file, the same
// pattern-scanning approach original_source's ecosystem/elixir.rs takes
// rather than embedding an Elixir parser. The project/0 function is not
// located explicitly.
var mixAppRex = regexp.MustCompile(`app:\s*:([a-zA-Z0-9_]+)`)
var mixVersionRex = regexp.MustCompile(`version:\s*"([^"]*)"`)
var mixDepRex = regexp.MustCompile(`\{:([a-zA-Z0-9_]+),\s*"([^"]*)"`)

func (elixirEcosystem) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading mix.exs: %w", err)
	}
	content := string(data)

	appMatch := mixAppRex.FindStringSubmatch(content)
	if appMatch == nil {
		return Descriptor{}, fmt.Errorf("mix.exs at %s has no app: atom", manifestAbsPath)
	}
	versionMatch := mixVersionRex.FindStringSubmatch(content)
	version := ""
	if versionMatch != nil {
		version = versionMatch[1]
	}

	var deps []Dependency
	for _, m := range mixDepRex.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}

	return Descriptor{
		Name:         strings.ReplaceAll(appMatch[1], "_", "-"),
		Version:      version,
		Dependencies: deps,
	}, nil
}

func (elixirEcosystem) RewriteVersion(manifestAbsPath string, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading mix.exs: %w", err)
	}
	if !mixVersionRex.Match(data) {
		return fmt.Errorf("mix.exs at %s has no version: field", manifestAbsPath)
	}
	replaced := mixVersionRex.ReplaceAll(data, []byte(`version: "`+newVersion+`"`))
	return writeLikeSource(manifestAbsPath, replaced)
}
