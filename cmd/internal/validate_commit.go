// Package internal holds hidden commands meant to be invoked by git hooks
// rather than typed by an operator.
package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/conventional"
)

// NewInternalCmd groups hook-facing commands under a hidden parent, kept
// separate from the main command tree the way the teacher isolates its own
// internal-only subcommands.
func NewInternalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "internal",
		Short:  "Internal commands invoked by git hooks",
		Hidden: true,
	}
	cmd.AddCommand(newValidateCommitMsgCmd())
	return cmd
}

// newValidateCommitMsgCmd is meant to be wired into a commit-msg git hook:
// it rejects commits whose subject line doesn't parse as a Conventional
// Commit, catching typos before they break bump analysis.
func newValidateCommitMsgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-commit-msg <path-to-commit-msg-file>",
		Short: "Validate a commit message follows Conventional Commits format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading commit message file: %w", err)
			}

			if _, ok := conventional.Parse(string(msgBytes)); !ok {
				fmt.Fprintln(os.Stderr, "--------------------------------------------------")
				fmt.Fprintln(os.Stderr, "INVALID COMMIT MESSAGE")
				fmt.Fprintln(os.Stderr, "--------------------------------------------------")
				fmt.Fprintln(os.Stderr, "Commit subject must follow Conventional Commits: <type>(<scope>): <subject>")
				fmt.Fprintln(os.Stderr, "Example: feat(api): add pagination to list endpoint")
				return fmt.Errorf("commit message is not a valid conventional commit")
			}
			return nil
		},
	}
}
