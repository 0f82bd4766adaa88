package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/ecosystem"
	"github.com/ilblu/belaf/internal/gitrepo"
	"github.com/ilblu/belaf/internal/release"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the discovered project dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			repo, err := gitrepo.Open(dir, cfg.Repo.Analysis.CommitCacheSize, cfg.Repo.Analysis.TreeCacheSize)
			if err != nil {
				return err
			}
			reg := ecosystem.NewRegistry()
			planner := release.New(repo, reg, cfg, log, repo.Root())

			plan, err := planner.Discover()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			order, err := plan.Graph().Toposorted()
			if err != nil {
				return err
			}
			for _, id := range order {
				node := plan.Graph().Node(id)
				fmt.Fprintf(out, "%s (%s)\n", node.Name, node.Ecosystem)
				for _, depID := range plan.Graph().Dependencies(id) {
					fmt.Fprintf(out, "  -> %s\n", plan.Graph().Node(depID).Name)
				}
			}
			return nil
		},
	}
}
