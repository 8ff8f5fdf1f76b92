package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cmdlearn/internal/rank"
)

var (
	suggestLimit int
	suggestTask  string
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [current-command]",
	Short: "Suggest the next command",
	Long: `Suggest likely next commands given the one just run (or being typed).

Examples:
  cmdlearn suggest "git add"          # what usually follows git add
  cmdlearn suggest --task deploy kubectl
  cmdlearn suggest --json "docker build"`,
	Args: cobra.ArbitraryArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "maximum number of suggestions")
	suggestCmd.Flags().StringVar(&suggestTask, "task", "", "task context for workflow suggestions")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	current := strings.Join(args, " ")
	suggestions := a.engine.GetSuggestions(current, suggestTask, suggestLimit)

	return writeSuggestions(suggestions, suggestJSON)
}

// writeSuggestions prints a suggestion list as text or JSON.
func writeSuggestions(suggestions []rank.Suggestion, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	for _, s := range suggestions {
		fmt.Printf("%-40s %.2f  %s\n", s.Command, s.Confidence, s.Description)
	}
	return nil
}
