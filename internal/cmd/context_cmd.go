package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contextRefresh bool

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the current session context digest",
	Long: `Print the session picture: user, shell, directory, git state, active
task, recent commands, and usage statistics. The digest is plain text,
suitable for feeding to an LLM assistant as grounding.`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

func init() {
	contextCmd.Flags().BoolVar(&contextRefresh, "refresh", false, "re-probe the environment before printing")
}

func runContext(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if contextRefresh {
		if err := a.engine.RefreshEnvironment(); err != nil {
			return err
		}
	}

	fmt.Println(a.engine.GetContextDigest())
	return nil
}
