package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for hncrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hncrawl",
		Short: "Archive new front-page submissions of a news site",
		Long: `hncrawl periodically polls the front page of a news aggregation site
(http://news.ycombinator.com by default). For each submission it has not seen
since it started, it saves the linked article as "index" and every link found
in the comment thread under a content-addressed name, all inside a directory
named after the submission id.

Runs, cycles and saved files are also recorded in a local archive database
that the history command reads back.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
