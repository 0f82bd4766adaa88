// Package manifest defines the ReleaseManifest JSON artifact the engine
// emits after a successful release, grounded on original_source's
// src/core/manifest.rs.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ilblu/belaf/internal/atomicfile"
	"github.com/ilblu/belaf/internal/version"
)

// SchemaVersion is the current ReleaseManifest schema version.
const SchemaVersion = "1.2"

// Dir is the directory, relative to the repository root, manifests are
// written to.
const Dir = "belaf/releases"

// ReleaseManifest is the top-level artifact written for one release run.
type ReleaseManifest struct {
	SchemaVersion string            `json:"schema_version"`
	CreatedAt     time.Time         `json:"created_at"`
	CreatedBy     string            `json:"created_by"`
	BaseBranch    string            `json:"base_branch"`
	Releases      []ProjectRelease  `json:"releases"`
}

// Statistics summarizes a single project's release; zero-valued fields are
// omitted from JSON, matching the Rust struct's serde skip_serializing_if
// rules.
type Statistics struct {
	CommitCount         int `json:"commit_count,omitempty"`
	DaysSinceLastRelease int `json:"days_since_last_release,omitempty"`
	BreakingChangesCount int `json:"breaking_changes_count,omitempty"`
	FeaturesCount        int `json:"features_count,omitempty"`
	FixesCount           int `json:"fixes_count,omitempty"`
	PRCount              int `json:"pr_count,omitempty"`
}

// ProjectRelease describes one project's release within a run.
type ProjectRelease struct {
	Name                    string      `json:"name"`
	Ecosystem               string      `json:"ecosystem"`
	PreviousVersion         string      `json:"previous_version,omitempty"`
	NewVersion              string      `json:"new_version"`
	BumpType                string      `json:"bump_type"`
	Changelog               string      `json:"changelog,omitempty"`
	TagName                 string      `json:"tag_name"`
	Prefix                  string      `json:"prefix,omitempty"`
	IsPrerelease            bool        `json:"is_prerelease"`
	PreviousTag             string      `json:"previous_tag,omitempty"`
	CompareURL              string      `json:"compare_url,omitempty"`
	Contributors            []string    `json:"contributors,omitempty"`
	FirstTimeContributors   []string    `json:"first_time_contributors,omitempty"`
	Statistics              *Statistics `json:"statistics,omitempty"`
}

// NewProjectRelease builds a ProjectRelease, computing TagName, PreviousTag,
// and IsPrerelease the same way original_source's ProjectRelease::new does:
// tag_name is "v{version}" or "{prefix}/v{version}" when prefix is set;
// previous_tag follows the same rule but is empty when previousVersion is
// empty (a project's first release has no previous tag).
func NewProjectRelease(name, ecosystem, previousVersion, newVersion, bumpType, prefix string) ProjectRelease {
	pr := ProjectRelease{
		Name:            name,
		Ecosystem:       ecosystem,
		PreviousVersion: previousVersion,
		NewVersion:      newVersion,
		BumpType:        bumpType,
		Prefix:          prefix,
	}
	pr.TagName = tagFor(prefix, newVersion)
	if previousVersion != "" {
		pr.PreviousTag = tagFor(prefix, previousVersion)
	}
	pr.IsPrerelease = version.DetectPrerelease(newVersion)
	return pr
}

func tagFor(prefix, v string) string {
	if prefix == "" {
		return "v" + v
	}
	return prefix + "/v" + v
}

// WithCompareURL, WithContributors, WithFirstTimeContributors, and
// WithStatistics are builder methods mirroring the Rust struct's fluent
// setters.
func (pr ProjectRelease) WithCompareURL(url string) ProjectRelease {
	pr.CompareURL = url
	return pr
}

func (pr ProjectRelease) WithContributors(c []string) ProjectRelease {
	pr.Contributors = c
	return pr
}

func (pr ProjectRelease) WithFirstTimeContributors(c []string) ProjectRelease {
	pr.FirstTimeContributors = c
	return pr
}

func (pr ProjectRelease) WithStatistics(s Statistics) ProjectRelease {
	pr.Statistics = &s
	return pr
}

// New builds a ReleaseManifest with the current schema version stamped.
func New(createdBy, baseBranch string, createdAt time.Time, releases []ProjectRelease) ReleaseManifest {
	return ReleaseManifest{
		SchemaVersion: SchemaVersion,
		CreatedAt:     createdAt,
		CreatedBy:     createdBy,
		BaseBranch:    baseBranch,
		Releases:      releases,
	}
}

// GenerateFilename returns "release-<YYYYMMDD-HHMMSS>-<uuid8>.json" for
// createdAt, matching original_source's generate_filename.
func GenerateFilename(createdAt time.Time) string {
	id := uuid.New().String()
	short := strings.ReplaceAll(id, "-", "")[:8]
	return fmt.Sprintf("release-%s-%s.json", createdAt.UTC().Format("20060102-150405"), short)
}

// Save atomically writes m as indented JSON to path.
func Save(path string, m ReleaseManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling release manifest: %w", err)
	}
	return atomicfile.Write(path, append(data, '\n'), 0o644)
}

// Load reads and parses a ReleaseManifest from path.
func Load(path string) (ReleaseManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReleaseManifest{}, fmt.Errorf("reading release manifest %s: %w", path, err)
	}
	var m ReleaseManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return ReleaseManifest{}, fmt.Errorf("parsing release manifest %s: %w", path, err)
	}
	return m, nil
}
