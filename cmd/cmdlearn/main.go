// Package main is the entry point for the cmdlearn CLI.
package main

import (
	"os"

	"github.com/runger/cmdlearn/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
