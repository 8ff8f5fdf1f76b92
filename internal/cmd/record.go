package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var recordExitCode int

var recordCmd = &cobra.Command{
	Use:   "record <command>...",
	Short: "Record an executed command and its exit code",
	Long: `Record a command execution so the engine can learn from it.

This command is designed for shell hook integration:

  cmdlearn record --exit-code $? -- "$LAST_COMMAND"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVar(&recordExitCode, "exit-code", 0, "exit code of the recorded command")
}

func runRecord(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	command := strings.Join(args, " ")
	return a.engine.RecordCommand(context.Background(), command, recordExitCode)
}
