package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/history"
	"github.com/runger/cmdlearn/internal/normalize"
)

var importShell string

var importCmd = &cobra.Command{
	Use:   "import [history-file]",
	Short: "Import shell history into the event archive",
	Long: `Import an existing shell history file so the engine starts with a
training corpus instead of a cold start. Without arguments the file and
format are guessed from $SHELL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importShell, "shell", "", "history format: bash or zsh (default: guess from $SHELL)")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.archive == nil {
		return fmt.Errorf("event archive unavailable")
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	zsh := importShell == "zsh"
	if path == "" {
		var guessZsh bool
		path, guessZsh = history.DefaultHistoryFile()
		if importShell == "" {
			zsh = guessZsh
		}
	}
	if path == "" {
		return fmt.Errorf("no history file found")
	}

	var entries []history.ImportEntry
	if zsh {
		entries, err = history.ImportZshHistory(path)
	} else {
		entries, err = history.ImportBashHistory(path)
	}
	if err != nil {
		return fmt.Errorf("parse history %s: %w", path, err)
	}

	events := make([]event.CommandEvent, 0, len(entries))
	for _, entry := range entries {
		if !normalize.Recordable(entry.Command) {
			continue
		}
		ev := event.CommandEvent{Command: entry.Command}
		if !entry.Timestamp.IsZero() {
			ev.Timestamp = float64(entry.Timestamp.Unix())
		}
		events = append(events, ev)
	}

	if err := a.archive.AppendBatch(context.Background(), events); err != nil {
		return fmt.Errorf("archive import: %w", err)
	}

	fmt.Printf("imported %d commands from %s\n", len(events), path)
	return nil
}
