package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/cmdlearn/internal/markov"
)

var trainFile string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the sequence model from command history",
	Long: `Rebuild the statistical sequence model. The training corpus is taken
from the first available source: --file, the live session history, then
the event archive.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainFile, "file", "", "train from a file of one command per line")
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var history []string
	if trainFile != "" {
		history, err = readLines(trainFile)
		if err != nil {
			return err
		}
	}

	if err := a.engine.TrainSequenceModel(context.Background(), history); err != nil {
		if errors.Is(err, markov.ErrInsufficientHistory) {
			return fmt.Errorf("not enough command history to train (need at least %d lines)", markov.MinTrainingLines)
		}
		return err
	}

	fmt.Println("sequence model trained")
	return nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
