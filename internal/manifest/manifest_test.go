package manifest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectReleaseTagNames(t *testing.T) {
	pr := NewProjectRelease("api", "cargo", "1.2.0", "1.3.0", "minor", "")
	assert.Equal(t, "v1.3.0", pr.TagName)
	assert.Equal(t, "v1.2.0", pr.PreviousTag)

	prefixed := NewProjectRelease("api", "cargo", "", "1.0.0", "minor", "api")
	assert.Equal(t, "api/v1.0.0", prefixed.TagName)
	assert.Empty(t, prefixed.PreviousTag, "PreviousTag should be empty for a first release")
}

func TestDetectPrerelease(t *testing.T) {
	pr := NewProjectRelease("api", "cargo", "1.0.0", "1.1.0-rc.1", "minor", "")
	assert.True(t, pr.IsPrerelease, "expected 1.1.0-rc.1 to be detected as prerelease")
}

func TestGenerateFilenameFormat(t *testing.T) {
	ts := time.Date(2026, 7, 29, 10, 30, 0, 0, time.UTC)
	name := GenerateFilename(ts)
	assert.True(t, strings.HasPrefix(name, "release-20260729-103000-"), "GenerateFilename = %q", name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := New("belaf", "main", time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC), []ProjectRelease{
		NewProjectRelease("api", "cargo", "1.0.0", "1.1.0", "minor", ""),
	})

	require.NoError(t, Save(path, m))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, loaded.SchemaVersion)
	require.Len(t, loaded.Releases, 1)
	assert.Equal(t, "v1.1.0", loaded.Releases[0].TagName)
}
