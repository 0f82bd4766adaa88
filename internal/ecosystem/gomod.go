package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

type goLoader struct{}

func (goLoader) Kind() Kind { return Go }

func (goLoader) Detect(absDir string) (string, bool) {
	p := filepath.Join(absDir, "go.mod")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

// Load parses go.mod via golang.org/x/mod/modfile, the same library the
// teacher's GoHandler uses. A Go module has no first-class version of its
// own — its release identity comes entirely from Git tags — so Descriptor
// always reports "0.0.0" as a placeholder, per the Open Question decision
// recorded in DESIGN.md.
func (goLoader) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading go.mod: %w", err)
	}
	mf, err := modfile.Parse(manifestAbsPath, data, nil)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing go.mod: %w", err)
	}
	if mf.Module == nil {
		return Descriptor{}, fmt.Errorf("go.mod at %s has no module directive", manifestAbsPath)
	}

	deps := make([]Dependency, 0, len(mf.Require))
	for _, req := range mf.Require {
		if req.Indirect {
			continue
		}
		deps = append(deps, Dependency{Name: req.Mod.Path, Version: req.Mod.Version})
	}

	return Descriptor{
		Name:         mf.Module.Mod.Path,
		Version:      "0.0.0",
		Dependencies: deps,
	}, nil
}
