package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

type swiftLoader struct{}

func (swiftLoader) Kind() Kind { return Swift }

func (swiftLoader) Detect(absDir string) (string, bool) {
	p := filepath.Join(absDir, "Package.swift")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

var swiftNameRex = regexp.MustCompile(`name:\s*"([^"]*)"`)

// Load reads the package's declared name from its first `name: "..."`
// occurrence (the Package(...) initializer's name argument always comes
// first). Like Go modules, a Swift package carries no first-class release
// version of its own — consumers pin it by Git tag — so Version is always
// the "0.0.0" placeholder and no Rewriter is registered.
func (swiftLoader) Load(manifestAbsPath string) (Descriptor, error) {
	data, err := os.ReadFile(manifestAbsPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading Package.swift: %w", err)
	}
	m := swiftNameRex.FindStringSubmatch(string(data))
	if m == nil {
		return Descriptor{}, fmt.Errorf("Package.swift at %s has no name: argument", manifestAbsPath)
	}
	return Descriptor{Name: m[1], Version: "0.0.0"}, nil
}
