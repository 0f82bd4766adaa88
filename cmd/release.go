package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/bump"
	"github.com/ilblu/belaf/internal/session"
)

func newReleaseCmd() *cobra.Command {
	release := &cobra.Command{
		Use:   "release",
		Short: "Plan and apply a release across the repository's projects",
	}
	release.AddCommand(newReleasePreviewCmd())
	release.AddCommand(newReleasePlanCmd())
	release.AddCommand(newReleaseApplyCmd())
	return release
}

func openSessionAtCWD() (*session.Session, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	sess, err := session.Open(dir, log)
	return sess, dir, err
}

func newReleasePreviewCmd() *cobra.Command {
	var baseBranch string
	c := &cobra.Command{
		Use:   "preview",
		Short: "Show what a release run would do, without writing anything",
		Long:  "Computes the same plan as 'release plan' would, but exits before rewriting any manifest or saving a release manifest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := openSessionAtCWD()
			if err != nil {
				return err
			}
			dirty, err := sess.Repo.IsDirty()
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: working tree has uncommitted changes")
			}
			now := releaseClock()
			result, err := sess.PlanRelease(baseBranch, "belaf", now, false)
			if err != nil {
				return err
			}
			renderPreview(cmd, result, isatty.IsTerminal(os.Stdout.Fd()))
			return nil
		},
	}
	c.Flags().StringVar(&baseBranch, "base-branch", "main", "base branch releases are cut from")
	return c
}

func newReleasePlanCmd() *cobra.Command {
	var baseBranch string
	var allowDirty bool
	var ci bool
	var bumpOverrides []string
	c := &cobra.Command{
		Use:   "plan",
		Short: "Compute and apply version bumps, then write a release manifest",
		Long: "Rewrites each recommended project's manifest to its next version, merges its changelog, and writes a release manifest under belaf/releases/. This mutates the working tree; commit the result yourself.\n\n" +
			"--ci refuses unconditionally on a dirty working tree and cuts a release/<UTC timestamp> branch before planning.\n" +
			"--bump name=type (repeatable) overrides commit-driven attribution entirely: named projects bump exactly as given, every other project is skipped, with no cascade.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := openSessionAtCWD()
			if err != nil {
				return err
			}
			now := releaseClock()

			if ci {
				branch, err := sess.BeginCIRelease(now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created release branch %s\n", branch)
			} else {
				dirty, err := sess.Repo.IsDirty()
				if err != nil {
					return err
				}
				if dirty && !allowDirty {
					return fmt.Errorf("working tree has uncommitted changes; pass --allow-dirty to proceed anyway")
				}
			}

			var result session.PlanResult
			if len(bumpOverrides) > 0 {
				overrides, err := parseBumpOverrides(bumpOverrides)
				if err != nil {
					return err
				}
				result, err = sess.PlanReleaseWithOverrides(baseBranch, "belaf", now, true, overrides)
				if err != nil {
					return err
				}
			} else {
				result, err = sess.PlanRelease(baseBranch, "belaf", now, true)
				if err != nil {
					return err
				}
			}

			path, err := sess.SaveManifest(result, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	c.Flags().StringVar(&baseBranch, "base-branch", "main", "base branch releases are cut from")
	c.Flags().BoolVar(&allowDirty, "allow-dirty", false, "proceed even with uncommitted changes (ignored with --ci, which always refuses)")
	c.Flags().BoolVar(&ci, "ci", false, "cut a release/<UTC timestamp> branch and refuse unconditionally on a dirty working tree")
	c.Flags().StringArrayVar(&bumpOverrides, "bump", nil, "explicit name=type override (repeatable); when set, only named projects release and no cascade is applied")
	return c
}

// parseBumpOverrides parses "name=type" pairs (type one of
// major/minor/patch/none) into the override map ApplyOverrides consumes.
func parseBumpOverrides(pairs []string) (map[string]bump.Recommendation, error) {
	out := make(map[string]bump.Recommendation, len(pairs))
	for _, pair := range pairs {
		name, kind, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --bump %q, want name=type", pair)
		}
		rec, err := parseBumpType(kind)
		if err != nil {
			return nil, fmt.Errorf("--bump %q: %w", pair, err)
		}
		out[name] = rec
	}
	return out, nil
}

func parseBumpType(s string) (bump.Recommendation, error) {
	switch strings.ToLower(s) {
	case "major":
		return bump.Major, nil
	case "minor":
		return bump.Minor, nil
	case "patch":
		return bump.Patch, nil
	case "none":
		return bump.None, nil
	default:
		return bump.None, fmt.Errorf("unknown bump type %q, want major/minor/patch/none", s)
	}
}

func newReleaseApplyCmd() *cobra.Command {
	// apply is an alias for plan: this engine performs manifest rewrites
	// synchronously as part of planning rather than in a separate
	// CI-gated apply step, so the subcommand exists only so operators used
	// to a plan/apply split find the command they expect.
	c := newReleasePlanCmd()
	c.Use = "apply"
	c.Short = "Alias for 'release plan'"
	return c
}
