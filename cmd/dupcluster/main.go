// Package main provides the entry point for the dupcluster CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/dupcluster/cmd/dupcluster/commands"
	"github.com/Sumatoshi-tech/dupcluster/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dupcluster",
		Short: "dupcluster - MinHash/LSH near-duplicate clustering",
		Long: `dupcluster groups near-duplicate text records using MinHash
signatures and locality-sensitive hashing, with an optional
Area-Under-Lift quality score against ground truth.

Commands:
  cluster   Cluster JSON-Lines text records
  score     Cluster records and score against ground-truth labels`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewClusterCommand())
	rootCmd.AddCommand(commands.NewScoreCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "dupcluster %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
