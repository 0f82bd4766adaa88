package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeDropsNonChangelogTypes(t *testing.T) {
	commits := Categorize([]string{
		"feat: add widget",
		"fix(api): null pointer",
		"chore: bump deps",
		"docs: typo",
		"chore(core)!: remove legacy mode",
	})
	require.Len(t, commits, 3)
	assert.Equal(t, Added, commits[0].Category)
	assert.Equal(t, Changed, commits[2].Category, "breaking commit with no mapped category should land under Changed")
	assert.True(t, commits[2].Breaking)
}

func TestRenderSectionOmitsEmptyCategories(t *testing.T) {
	b := NewBuilder()
	section := b.RenderSection("1.1.0", "2026-07-29", Categorize([]string{"feat: add widget"}))
	assert.Contains(t, section, "## [1.1.0] - 2026-07-29")
	assert.NotContains(t, section, "### Fixed", "section should omit empty Fixed category")
}

func TestMergeIsIdempotent(t *testing.T) {
	b := NewBuilder()
	section := b.RenderSection("1.1.0", "2026-07-29", Categorize([]string{"feat: add widget"}))

	once := b.Merge("", "1.1.0", section)
	twice := b.Merge(once, "1.1.0", section)

	assert.Equal(t, 1, strings.Count(twice, "## [1.1.0]"), "expected exactly one 1.1.0 section after re-merge, got:\n%s", twice)
}
