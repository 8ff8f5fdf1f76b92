// Package cmd implements the cmdlearn CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cmdlearn",
	Short: "learn your shell habits, predict your next command",
	Long: `cmdlearn - adaptive command prediction for any shell
  - records what you run and how it exits
  - suggests the next command from learned transitions and workflows
  - proposes fixes when a command fails`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}
