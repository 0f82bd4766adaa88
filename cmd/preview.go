package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/bump"
	"github.com/ilblu/belaf/internal/session"
)

// releaseClock returns the timestamp stamped on a release manifest. It is
// its own function, rather than an inline time.Now() call, so a future
// test can substitute a fixed clock without touching call sites.
func releaseClock() time.Time {
	return time.Now().UTC()
}

// renderPreview prints a one-line-per-project summary of a planned
// release. When colorized is true, bump sizes are prefixed with a plain
// marker rather than ANSI color codes: this engine's only TTY-aware
// decision is whether to show the marker at all, since a non-interactive
// pipe consumer (CI logs, `belaf release preview | grep`) should get plain
// text.
func renderPreview(cmd *cobra.Command, result session.PlanResult, colorized bool) {
	out := cmd.OutOrStdout()
	any := false
	for _, pp := range result.Plan.Projects {
		if pp.Recommendation == bump.None {
			continue
		}
		any = true
		marker := ""
		if colorized {
			marker = "* "
		}
		fmt.Fprintf(out, "%s%s: %s -> %s (%s)\n", marker, pp.Name, pp.CurrentVersion, pp.NextVersion, pp.Recommendation)
	}
	if !any {
		fmt.Fprintln(out, "no projects have releasable changes")
	}
}
