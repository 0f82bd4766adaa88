package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/changelog"
	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/gitrepo"
)

// newChangelogCmd renders a changelog section for a single project path
// directly, grounded on the teacher's cmd/changelog.go (tag lookup + git
// log + prepend-to-CHANGELOG.md), replacing its dependency on the
// unavailable github.com/grovetools/core/conventional package with this
// engine's own internal/conventional + internal/changelog. The project path
// selects the config overlay and the CHANGELOG.md that is written; the
// commits are every repository commit since the last unprefixed "vX.Y.Z"
// tag (or the baseline tag) and are not filtered by the project's path.
func newChangelogCmd() *cobra.Command {
	var newVersion string
	c := &cobra.Command{
		Use:   "changelog <project-path>",
		Short: "Generate a changelog section for one project and prepend it to its CHANGELOG.md",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := args[0]

			cfg, err := config.Load(projectPath)
			if err != nil {
				return err
			}
			repo, err := gitrepo.Open(projectPath, cfg.Repo.Analysis.CommitCacheSize, cfg.Repo.Analysis.TreeCacheSize)
			if err != nil {
				return err
			}

			head, err := repo.HeadCommit()
			if err != nil {
				return err
			}
			_, _, fromHash, ok, err := repo.LastReleaseTag("")
			if err != nil {
				return err
			}
			if !ok {
				fromHash = [20]byte{}
			}

			commits, err := repo.CommitsSince(fromHash, head)
			if err != nil {
				return fmt.Errorf("listing commits: %w", err)
			}
			messages := make([]string, len(commits))
			for i, c := range commits {
				messages[i] = c.Message
			}

			categorized := changelog.Categorize(messages)
			if len(categorized) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conventional commits found since the last release tag; no changelog generated")
				return nil
			}

			builder := changelog.NewBuilder()
			section := builder.RenderSection(newVersion, releaseClock().Format("2006-01-02"), categorized)

			changelogPath := filepath.Join(projectPath, cfg.Changelog.Output)
			existing, _ := os.ReadFile(changelogPath)
			merged := builder.Merge(string(existing), newVersion, section)

			return os.WriteFile(changelogPath, []byte(merged), 0o644)
		},
	}
	c.Flags().StringVar(&newVersion, "version", "0.0.0", "the version heading to render the changelog section under")
	return c
}
