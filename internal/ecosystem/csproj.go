package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type csprojEcosystem struct{}

func (csprojEcosystem) Kind() Kind { return CSProj }

func (csprojEcosystem) Detect(absDir string) (string, bool) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csproj") {
			return filepath.Join(absDir, e.Name()), true
		}
	}
	return "", false
}

var csprojVersionRex = regexp.MustCompile(`<Version>([^<]*)</Version>`)

func (csprojEcosystem) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading %s: %w", manifestAbsPath, err)
	}
	name := strings.TrimSuffix(filepath.Base(manifestAbsPath), ".csproj")
	version := ""
	if m := csprojVersionRex.FindStringSubmatch(string(data)); m != nil {
		version = m[1]
	}
	return Descriptor{Name: name, Version: version}, nil
}

func (csprojEcosystem) RewriteVersion(manifestAbsPath string, newVersion string) error {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", manifestAbsPath, err)
	}
	if !csprojVersionRex.Match(data) {
		return fmt.Errorf("%s has no <Version> element", manifestAbsPath)
	}
	replaced := csprojVersionRex.ReplaceAll(data, []byte("<Version>"+newVersion+"</Version>"))
	return writeLikeSource(manifestAbsPath, replaced)
}
