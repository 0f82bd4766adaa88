// Package ecosystem detects per-ecosystem packaging manifests and reads or
// rewrites the name/version/dependency fields within them, grounded on the
// teacher's pkg/project ProjectHandler interface, generalized to this
// engine's name and version-only concerns (build/test commands belong to
// grove's own workflow, not this release engine's).
package ecosystem

import "github.com/ilblu/belaf/internal/repopath"

// Kind identifies a packaging ecosystem.
type Kind string

const (
	Go     Kind = "go"
	Cargo  Kind = "cargo"
	Npm    Kind = "npm"
	PyPA   Kind = "pypa"
	Elixir Kind = "elixir"
	Swift  Kind = "swift"
	CSProj Kind = "csproj"
)

// Dependency is one declared dependency edge read from a manifest.
type Dependency struct {
	Name      string
	Version   string
	Workspace bool // true for an npm dependency declared with the "workspace:" protocol; other loaders leave it false
}

// Descriptor is what a Loader reads from a detected manifest.
type Descriptor struct {
	Name         string
	Version      string
	Dependencies []Dependency
	ManifestPath repopath.Path // the file a Rewriter would edit
}

// Loader detects and parses one ecosystem's manifest file(s) within a
// candidate directory.
type Loader interface {
	Kind() Kind
	// Detect reports whether dir (relative to the repo root, as an absolute
	// filesystem path for I/O) contains this ecosystem's manifest.
	Detect(absDir string) (manifestAbsPath string, ok bool)
	// Load parses the manifest at manifestAbsPath.
	Load(manifestAbsPath string) (Descriptor, error)
}

// Rewriter performs the byte-level-minimal version rewrite for one
// ecosystem's manifest. Ecosystems with no meaningful version field of
// their own (Go modules, Swift packages, both pinned at "0.0.0" and
// versioned purely through Git tags) register no Rewriter.
type Rewriter interface {
	Kind() Kind
	RewriteVersion(manifestAbsPath string, newVersion string) error
}

// DependencyRewriter performs a dependent's internal-dependency-literal
// rewrite when a project it depends on gets a new version (Cargo's
// `{ path = "...", version = "X" }`, npm's `dependencies[name]`). Only
// ecosystems whose manifest embeds the dependency's version as a literal
// implement it; PyPA, Elixir, csproj, and Go leave a dependent's manifest
// untouched (pass-through), per spec.
type DependencyRewriter interface {
	Kind() Kind
	RewriteDependencyVersion(manifestAbsPath, depName, newVersion string) error
}

// Registry looks up a Loader/Rewriter/DependencyRewriter by Kind.
type Registry struct {
	loaders       map[Kind]Loader
	rewriters     map[Kind]Rewriter
	depRewriters  map[Kind]DependencyRewriter
}

// NewRegistry builds a Registry with all built-in ecosystems registered.
func NewRegistry() *Registry {
	r := &Registry{
		loaders:      make(map[Kind]Loader),
		rewriters:    make(map[Kind]Rewriter),
		depRewriters: make(map[Kind]DependencyRewriter),
	}
	for _, dr := range []DependencyRewriter{
		cargoEcosystem{},
		npmEcosystem{},
	} {
		r.RegisterDependencyRewriter(dr)
	}
	for _, l := range []Loader{
		goLoader{},
		cargoEcosystem{},
		npmEcosystem{},
		pypaEcosystem{},
		elixirEcosystem{},
		swiftLoader{},
		csprojEcosystem{},
	} {
		r.RegisterLoader(l)
	}
	for _, w := range []Rewriter{
		cargoEcosystem{},
		npmEcosystem{},
		pypaEcosystem{},
		elixirEcosystem{},
		csprojEcosystem{},
	} {
		r.RegisterRewriter(w)
	}
	return r
}

func (r *Registry) RegisterLoader(l Loader)     { r.loaders[l.Kind()] = l }
func (r *Registry) RegisterRewriter(w Rewriter) { r.rewriters[w.Kind()] = w }
func (r *Registry) RegisterDependencyRewriter(d DependencyRewriter) {
	r.depRewriters[d.Kind()] = d
}

// Loaders returns all registered loaders, in a fixed order so directory
// detection is deterministic regardless of map iteration.
func (r *Registry) Loaders() []Loader {
	order := []Kind{Cargo, Npm, PyPA, Go, Elixir, Swift, CSProj}
	out := make([]Loader, 0, len(order))
	for _, k := range order {
		if l, ok := r.loaders[k]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Rewriter returns the registered Rewriter for kind, if any.
func (r *Registry) Rewriter(kind Kind) (Rewriter, bool) {
	w, ok := r.rewriters[kind]
	return w, ok
}

// DependencyRewriter returns the registered DependencyRewriter for kind, if
// any. Ecosystems with no dependency-literal rewrite (PyPA, Elixir, csproj,
// Go) have none registered, so a dependent in one of those ecosystems is
// silently left untouched.
func (r *Registry) DependencyRewriter(kind Kind) (DependencyRewriter, bool) {
	d, ok := r.depRewriters[kind]
	return d, ok
}
