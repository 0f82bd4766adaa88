package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

// Builder renders Keep a Changelog Markdown for one release and merges it
// idempotently into an existing CHANGELOG.md.
type Builder struct {
	// Header is the file-level header emitted once at the top of a fresh
	// CHANGELOG.md (title, Keep a Changelog/SemVer preamble links).
	Header string
}

// NewBuilder returns a Builder with the conventional Keep a Changelog
// header.
func NewBuilder() Builder {
	return Builder{
		Header: "# Changelog\n\n" +
			"All notable changes to this project will be documented in this file.\n\n" +
			"The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),\n" +
			"and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).\n",
	}
}

// RenderSection renders one "## [version] - date" section body from
// categorized commits, in fixed category order, omitting empty categories.
func (b Builder) RenderSection(version, date string, commits []CategorizedCommit) string {
	byCat := make(map[Category][]CategorizedCommit)
	for _, c := range commits {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "## [%s] - %s\n", version, date)
	any := false
	for _, cat := range Order {
		items := byCat[cat]
		if len(items) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&body, "\n### %s\n", cat)
		for _, item := range items {
			body.WriteString(item.FormatForChangelog())
			body.WriteString("\n")
		}
	}
	if !any {
		body.WriteString("\nNo notable changes.\n")
	}
	return body.String()
}

var sectionHeadingRex = regexp.MustCompile(`(?m)^## \[`)

// Merge inserts newSection into an existing changelog's content, just after
// the file header and any "[Unreleased]" section, and before the first
// released version section. If existing is empty, the Header is prepended.
// Merge is idempotent: if a section for the same version heading already
// exists, it is replaced rather than duplicated, so rerunning a release
// that failed after writing the changelog doesn't double the entry.
func (b Builder) Merge(existing string, version string, newSection string) string {
	versionHeading := fmt.Sprintf("## [%s]", version)

	if strings.Contains(existing, versionHeading) {
		return replaceSection(existing, versionHeading, newSection)
	}

	if strings.TrimSpace(existing) == "" {
		return strings.TrimRight(b.Header, "\n") + "\n\n" + strings.TrimRight(newSection, "\n") + "\n"
	}

	insertAt := -1
	for _, loc := range sectionHeadingRex.FindAllStringIndex(existing, -1) {
		if !strings.HasPrefix(existing[loc[0]:], "## [Unreleased]") {
			insertAt = loc[0]
			break
		}
	}
	if insertAt < 0 {
		return strings.TrimRight(existing, "\n") + "\n\n" + strings.TrimRight(newSection, "\n") + "\n"
	}
	return existing[:insertAt] + strings.TrimRight(newSection, "\n") + "\n\n" + existing[insertAt:]
}

func replaceSection(existing, heading, newSection string) string {
	start := strings.Index(existing, heading)
	if start < 0 {
		return existing
	}
	rest := existing[start+len(heading):]
	end := sectionHeadingRex.FindStringIndex(rest)
	var tail string
	if end == nil {
		tail = ""
	} else {
		tail = rest[end[0]:]
	}
	return existing[:start] + strings.TrimRight(newSection, "\n") + "\n\n" + tail
}
