// Package version wraps Masterminds/semver/v3 behind a small interface so
// the rest of the engine depends on a capability, not a concrete parser; the
// only implementation today is Semver, matching what the teacher's release
// tooling (cmd/release.go) already standardizes on.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed, comparable semantic version.
type Version interface {
	fmt.Stringer
	Major() uint64
	Minor() uint64
	Patch() uint64
	Prerelease() string
	Compare(other Version) int
	IsPrerelease() bool
}

// Semver is the semver.org-backed Version implementation.
type Semver struct {
	v *semver.Version
}

// Parse parses s as a semantic version, tolerating a leading "v".
func Parse(s string) (Semver, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Semver{}, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return Semver{v: v}, nil
}

// MustParse is Parse but panics on error.
func MustParse(s string) Semver {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (s Semver) String() string            { return s.v.String() }
func (s Semver) Major() uint64              { return s.v.Major() }
func (s Semver) Minor() uint64              { return s.v.Minor() }
func (s Semver) Patch() uint64              { return s.v.Patch() }
func (s Semver) Prerelease() string         { return s.v.Prerelease() }
func (s Semver) IsPrerelease() bool         { return s.v.Prerelease() != "" }

func (s Semver) Compare(other Version) int {
	o, ok := other.(Semver)
	if !ok {
		return strings.Compare(s.String(), other.String())
	}
	return s.v.Compare(o.v)
}

// BumpMajor, BumpMinor, BumpPatch return the next version per semver's
// standard reset rules (bumping major resets minor and patch to zero, etc.),
// dropping any prerelease/build metadata as the original implementation
// does when cutting a release from a dirty prerelease tag.
func (s Semver) BumpMajor() Semver {
	return Semver{v: ptrVersion(s.v.IncMajor())}
}

func (s Semver) BumpMinor() Semver {
	return Semver{v: ptrVersion(s.v.IncMinor())}
}

func (s Semver) BumpPatch() Semver {
	return Semver{v: ptrVersion(s.v.IncPatch())}
}

func ptrVersion(v semver.Version) *semver.Version { return &v }

// prereleaseMarkers are the substrings original_source's detect_prerelease
// checks for, case-insensitively, against the raw version string.
var prereleaseMarkers = []string{"-alpha", "-beta", "-rc", "-dev", "-pre", "-snapshot"}

// DetectPrerelease reports whether raw looks like a pre-release version by
// substring match, independent of whether it parses as strict semver (tags
// like "v1.2.0-rc.1" and non-semver ecosystem version strings both need
// this check).
func DetectPrerelease(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range prereleaseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
