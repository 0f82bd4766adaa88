package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/session"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Bootstrap belaf in the current repository",
		Long:  "Discovers every project in the repository, seeds belaf/config.toml, and tags HEAD with the single repository-wide release baseline tag.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			sess, err := session.Open(dir, log)
			if err != nil {
				return err
			}
			result, err := sess.Bootstrap()
			if err != nil {
				return err
			}
			for _, name := range result.Projects {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bootstrapped %d project(s); tagged %s; wrote %s and %s\n",
				len(result.Projects), result.BaselineTag, result.ConfigPath, result.BootstrapPath)
			return nil
		},
	}
}
