// Package changelog builds Keep-a-Changelog-style Markdown from categorized
// Conventional Commits, grounded on original_source's ChangelogCategory
// and CategorizedCommit.
package changelog

import (
	"fmt"
	"strings"

	"github.com/ilblu/belaf/internal/conventional"
)

// Category is one of the fixed Keep a Changelog sections, in the fixed
// display order Added, Changed, Deprecated, Removed, Fixed, Security.
type Category int

const (
	NoCategory Category = iota
	Added
	Changed
	Deprecated
	Removed
	Fixed
	Security
)

// Order is the fixed category display order used when rendering a
// changelog body.
var Order = []Category{Added, Changed, Deprecated, Removed, Fixed, Security}

func (c Category) String() string {
	switch c {
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	case Deprecated:
		return "Deprecated"
	case Removed:
		return "Removed"
	case Fixed:
		return "Fixed"
	case Security:
		return "Security"
	default:
		return ""
	}
}

// CategoryFromConventionalType maps a Conventional Commit type to a
// changelog category, mirroring
// original_source's ChangelogCategory::from_conventional_type. Types with
// no changelog relevance (docs, chore, ci, test, style, build) map to
// NoCategory and are dropped from generated changelogs.
func CategoryFromConventionalType(t string) Category {
	switch t {
	case "feat":
		return Added
	case "fix":
		return Fixed
	case "perf", "refactor":
		return Changed
	default:
		return NoCategory
	}
}

// CategorizedCommit is one commit placed into a changelog category.
type CategorizedCommit struct {
	Category Category
	Message  string
	Scope    string
	Breaking bool
	Original string
}

// FormatForChangelog renders one line of the changelog body, e.g.
// "- **api**: handle nil pointer [BREAKING]".
func (c CategorizedCommit) FormatForChangelog() string {
	var b strings.Builder
	b.WriteString("- ")
	if c.Scope != "" {
		fmt.Fprintf(&b, "**%s**: ", c.Scope)
	}
	b.WriteString(c.Message)
	if c.Breaking {
		b.WriteString(" [BREAKING]")
	}
	return b.String()
}

// Categorize classifies raw commit messages, dropping any that don't parse
// as Conventional Commits or whose type carries no changelog category.
// Breaking commits are always retained (promoted under their mapped
// category, or under Changed if their type has none) since a breaking
// change is changelog-worthy regardless of type.
func Categorize(messages []string) []CategorizedCommit {
	var out []CategorizedCommit
	for _, msg := range messages {
		c, ok := conventional.Parse(msg)
		if !ok {
			continue
		}
		cat := CategoryFromConventionalType(c.Type)
		if cat == NoCategory {
			if !c.Breaking {
				continue
			}
			cat = Changed
		}
		out = append(out, CategorizedCommit{
			Category: cat,
			Message:  c.Subject,
			Scope:    c.Scope,
			Breaking: c.Breaking,
			Original: msg,
		})
	}
	return out
}
