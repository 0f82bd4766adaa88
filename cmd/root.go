// Package cmd implements the belaf CLI command tree, built on
// spf13/cobra, mirroring the teacher's cobra-based command layout
// (cmd/release.go, cmd/changelog.go) without its private grove-core
// dependency: the root command is a plain *cobra.Command rather than a
// tool-delegating wrapper, since this engine has no installed-tool
// registry to delegate to.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cmdinternal "github.com/ilblu/belaf/cmd/internal"
	"github.com/ilblu/belaf/internal/logging"
)

var log *logrus.Logger

var rootCmd = &cobra.Command{
	Use:           "belaf",
	Short:         "Monorepo release engineering engine",
	Long:          "belaf discovers per-ecosystem projects in a Git monorepo, attributes commits, recommends semantic version bumps from Conventional Commits, and rewrites packaging manifests and changelogs.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	log = logging.New()
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newReleaseCmd())
	rootCmd.AddCommand(newChangelogCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(cmdinternal.NewInternalCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
