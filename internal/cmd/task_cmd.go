package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var taskJSON bool

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Detect and manage the current task",
	Args:  cobra.NoArgs,
	RunE:  runTaskDetect,
}

var taskSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest tasks for the current directory",
	Args:  cobra.NoArgs,
	RunE:  runTaskSuggest,
}

var taskLearnCmd = &cobra.Command{
	Use:   "learn <task-name> <command>...",
	Short: "Teach the detector that commands belong to a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskLearn,
}

func init() {
	taskCmd.PersistentFlags().BoolVar(&taskJSON, "json", false, "output as JSON")
	taskCmd.AddCommand(taskSuggestCmd)
	taskCmd.AddCommand(taskLearnCmd)
}

func runTaskDetect(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.engine.DetectCurrentTask()
	if taskJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Task == "" {
		fmt.Println("no task detected")
		return nil
	}
	fmt.Printf("task: %s (confidence %.2f)\n", result.Task, result.Confidence)
	if result.Project != "" {
		fmt.Printf("project: %s\n", result.Project)
	}
	return nil
}

func runTaskSuggest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	suggestions := a.engine.TaskSuggestions()
	if taskJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	for _, s := range suggestions {
		fmt.Printf("%-20s %.2f  %s\n", s.Task, s.Confidence, s.Reason)
	}
	return nil
}

func runTaskLearn(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	taskName := args[0]
	commands := args[1:]

	if err := a.engine.LearnTaskCommands(commands, taskName); err != nil {
		return err
	}
	fmt.Printf("learned %d command(s) for task %s\n", len(commands), taskName)
	return nil
}
