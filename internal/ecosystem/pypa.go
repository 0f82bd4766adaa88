package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ilblu/belaf/internal/atomicfile"
)

type pypaEcosystem struct{}

func (pypaEcosystem) Kind() Kind { return PyPA }

// Detect prefers pyproject.toml, then setup.cfg, then setup.py, matching
// the precedence a Python build frontend itself uses.
func (pypaEcosystem) Detect(absDir string) (string, bool) {
	for _, name := range []string{"pyproject.toml", "setup.cfg", "setup.py"} {
		p := filepath.Join(absDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func (pypaEcosystem) Load(manifestAbsPath string) (Descriptor, error) {
	switch filepath.Base(manifestAbsPath) {
	case "pyproject.toml":
		return loadPyproject(manifestAbsPath)
	case "setup.cfg":
		return loadSetupCfg(manifestAbsPath)
	default:
		return loadSetupPy(manifestAbsPath)
	}
}

func loadPyproject(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading pyproject.toml: %w", err)
	}
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Descriptor{}, fmt.Errorf("parsing pyproject.toml at %s: %w", path, err)
	}
	project, _ := doc["project"].(map[string]interface{})
	name, _ := project["name"].(string)
	version, _ := project["version"].(string)

	var deps []Dependency
	if rawDeps, ok := project["dependencies"].([]interface{}); ok {
		for _, raw := range rawDeps {
			s, ok := raw.(string)
			if !ok {
				continue
			}
			depName, depVersion := parsePythonDependency(s)
			deps = append(deps, Dependency{Name: depName, Version: depVersion})
		}
	}

	if name == "" {
		return Descriptor{}, fmt.Errorf("pyproject.toml at %s has no [project].name", path)
	}
	return Descriptor{Name: name, Version: version, Dependencies: deps}, nil
}

var setupCfgNameRex = regexp.MustCompile(`(?m)^\s*name\s*=\s*(.+)$`)
var setupCfgVersionRex = regexp.MustCompile(`(?m)^\s*version\s*=\s*(.+)$`)

func loadSetupCfg(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading setup.cfg: %w", err)
	}
	content := string(data)
	m := setupCfgNameRex.FindStringSubmatch(content)
	if m == nil {
		return Descriptor{}, fmt.Errorf("setup.cfg at %s has no [metadata] name", path)
	}
	name := strings.TrimSpace(m[1])
	version := ""
	if vm := setupCfgVersionRex.FindStringSubmatch(content); vm != nil {
		version = strings.TrimSpace(vm[1])
	}
	return Descriptor{Name: name, Version: version}, nil
}

// setupPyVersionRex matches a `__version__ = "x.y.z"` assignment, the
// de facto standard for packages that still use a bare setup.py.
var setupPyVersionRex = regexp.MustCompile(`(?m)^(\s*__version__\s*=\s*)["']([^"']*)["']`)
var setupPyNameRex = regexp.MustCompile(`name\s*=\s*["']([^"']*)["']`)

func loadSetupPy(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading setup.py: %w", err)
	}
	content := string(data)
	name := ""
	if m := setupPyNameRex.FindStringSubmatch(content); m != nil {
		name = m[1]
	}
	if name == "" {
		name = filepath.Base(filepath.Dir(path))
	}
	version := ""
	if m := setupPyVersionRex.FindStringSubmatch(content); m != nil {
		version = m[2]
	}
	return Descriptor{Name: name, Version: version}, nil
}

func (pypaEcosystem) RewriteVersion(manifestAbsPath string, newVersion string) error {
	switch filepath.Base(manifestAbsPath) {
	case "pyproject.toml":
		return rewritePyprojectVersion(manifestAbsPath, newVersion)
	case "setup.cfg":
		return rewriteSetupCfgVersion(manifestAbsPath, newVersion)
	default:
		return rewriteSetupPyVersion(manifestAbsPath, newVersion)
	}
}

var pyprojectVersionRex = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)"([^"]*)"`)

func rewritePyprojectVersion(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading pyproject.toml: %w", err)
	}
	projectStart := findTableStart(string(data), "[project]")
	if projectStart < 0 {
		return fmt.Errorf("pyproject.toml at %s has no [project] table", path)
	}
	body, bodyStart := sliceTableBody(string(data), projectStart)
	if !pyprojectVersionRex.MatchString(body) {
		return fmt.Errorf("pyproject.toml at %s has no version field in [project]", path)
	}
	newBody := pyprojectVersionRex.ReplaceAllString(body, `${1}"`+newVersion+`"`)
	newContent := string(data)[:bodyStart] + newBody + string(data)[bodyStart+len(body):]
	return writeLikeSource(path, []byte(newContent))
}

func rewriteSetupCfgVersion(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading setup.cfg: %w", err)
	}
	if !setupCfgVersionRex.Match(data) {
		return fmt.Errorf("setup.cfg at %s has no version field", path)
	}
	replaced := setupCfgVersionRex.ReplaceAll(data, []byte("version = "+newVersion))
	return writeLikeSource(path, replaced)
}

func rewriteSetupPyVersion(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading setup.py: %w", err)
	}
	if !setupPyVersionRex.Match(data) {
		return fmt.Errorf("setup.py at %s has no __version__ assignment", path)
	}
	replaced := setupPyVersionRex.ReplaceAll(data, []byte(`${1}"`+newVersion+`"`))
	return writeLikeSource(path, replaced)
}

func writeLikeSource(path string, data []byte) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return atomicfile.Write(path, data, mode)
}

// parsePythonDependency splits a PEP 508-ish dependency string into its
// package name and version specifier, grounded on the teacher's
// MaturinHandler parsePythonDependency helper.
func parsePythonDependency(dep string) (name, version string) {
	for _, op := range []string{">=", "<=", "==", ">", "<", "~=", "!="} {
		if idx := strings.Index(dep, op); idx != -1 {
			return strings.TrimSpace(dep[:idx]), strings.TrimSpace(dep[idx+len(op):])
		}
	}
	return strings.TrimSpace(dep), ""
}
