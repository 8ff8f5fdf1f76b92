package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	fixErrorOutput string
	fixLimit       int
	fixJSON        bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <failed-command>...",
	Short: "Suggest fixes for a failed command",
	Long: `Suggest corrections for a command that just failed, from learned
error patterns and built-in heuristics.

Examples:
  cmdlearn fix --error "cd: foo: No such file or directory" cd foo
  cmdlearn fix --error "command not found" htop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixErrorOutput, "error", "", "error output of the failed command")
	fixCmd.Flags().IntVarP(&fixLimit, "limit", "n", 0, "maximum number of fixes")
	fixCmd.Flags().BoolVar(&fixJSON, "json", false, "output fixes as JSON")
}

func runFix(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	failed := strings.Join(args, " ")
	fixes := a.engine.GetErrorFix(failed, fixErrorOutput, fixLimit)

	return writeSuggestions(fixes, fixJSON)
}
