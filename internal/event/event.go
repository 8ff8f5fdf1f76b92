// Package event defines the command event type recorded for every shell
// command the engine observes.
package event

import (
	"time"

	"github.com/google/uuid"
)

// CommandEvent is one observed command execution. Events are immutable once
// recorded; every subsystem consumes them, none mutates them.
type CommandEvent struct {
	// Command is the raw command string as entered by the user.
	Command string `json:"command"`

	// ExitCode is the exit code of the command.
	ExitCode int `json:"exit_code"`

	// Timestamp is the execution time in Unix seconds.
	Timestamp float64 `json:"timestamp"`

	// SessionID identifies the recording session (empty for imported
	// history, which predates session tracking).
	SessionID string `json:"session_id,omitempty"`
}

// New builds a CommandEvent stamped with the current time.
func New(command string, exitCode int, sessionID string) CommandEvent {
	return CommandEvent{
		Command:   command,
		ExitCode:  exitCode,
		Timestamp: Now(),
		SessionID: sessionID,
	}
}

// Succeeded reports whether the command exited cleanly.
func (e CommandEvent) Succeeded() bool {
	return e.ExitCode == 0
}

// Now returns the current time in Unix seconds as a float.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
