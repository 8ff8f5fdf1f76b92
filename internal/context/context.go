// Package context maintains the live picture of the user's shell session:
// the rolling command history, per-command frequency counts, shell and
// environment facts, and the active task. All of it persists as JSON
// documents so the picture survives across sessions.
package context

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/normalize"
	"github.com/runger/cmdlearn/internal/store"
)

// Document names under the data directory.
const (
	snapshotDoc    = "context.json"
	frequencyDoc   = "frequency.json"
	taskProfileDoc = "task_profile.json"
)

// DefaultHistoryLimit caps the rolling history ring.
const DefaultHistoryLimit = 100

// maxRecentTasks caps the recent task list.
const maxRecentTasks = 5

// ShellInfo describes the user's shell.
type ShellInfo struct {
	Shell    string `json:"shell"`
	Terminal string `json:"terminal"`
	User     string `json:"user"`
	Hostname string `json:"hostname"`
}

// GitInfo describes the git repository at the working directory, if any.
type GitInfo struct {
	IsRepo bool   `json:"is_repo"`
	Branch string `json:"branch,omitempty"`
	Status string `json:"status,omitempty"`
	Remote string `json:"remote,omitempty"`
}

// EnvironmentInfo describes the working environment.
type EnvironmentInfo struct {
	CWD  string  `json:"cwd"`
	Home string  `json:"home"`
	Git  GitInfo `json:"git"`
}

// Snapshot is the persisted session picture.
type Snapshot struct {
	Shell       ShellInfo            `json:"shell_info"`
	Environment EnvironmentInfo      `json:"environment"`
	Recent      []event.CommandEvent `json:"command_history"`
	LastUpdated float64              `json:"last_updated"`
}

// frequencyTable is the persisted per-base-command usage counter.
type frequencyTable struct {
	Counts      map[string]int `json:"command_frequency"`
	LastUpdated float64        `json:"last_updated"`
}

// taskProfile is the persisted active-task record.
type taskProfile struct {
	CurrentTask string   `json:"current_task,omitempty"`
	RecentTasks []string `json:"recent_tasks"`
	LastUpdated float64  `json:"last_updated"`
}

// Store is the context store. All methods are safe for concurrent use.
type Store struct {
	docs      *store.Store
	logger    *slog.Logger
	probe     Prober
	sessionID string
	limit     int

	mu        sync.Mutex
	snapshot  Snapshot
	frequency frequencyTable
	tasks     taskProfile
}

// Options configures a context Store.
type Options struct {
	Logger *slog.Logger

	// SessionID stamps recorded events. Empty means mint a fresh one.
	SessionID string

	// HistoryLimit caps the history ring. Zero means DefaultHistoryLimit.
	HistoryLimit int

	// Prober collects shell and environment facts. Nil means the real
	// system prober.
	Prober Prober
}

// New loads the persisted context documents and returns a Store over them.
// Missing or corrupt documents start fresh.
func New(docs *store.Store, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = event.NewSessionID()
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	probe := opts.Prober
	if probe == nil {
		probe = systemProber{}
	}

	s := &Store{
		docs:      docs,
		logger:    logger,
		probe:     probe,
		sessionID: sessionID,
		limit:     limit,
	}

	docs.Load(snapshotDoc, &s.snapshot)
	docs.Load(frequencyDoc, &s.frequency)
	docs.Load(taskProfileDoc, &s.tasks)
	if s.frequency.Counts == nil {
		s.frequency.Counts = make(map[string]int)
	}

	return s
}

// SessionID returns the session identifier events are stamped with.
func (s *Store) SessionID() string {
	return s.sessionID
}

// RecordCommand appends a command execution to the history ring and bumps
// its frequency count. Commands failing the record guards (blank, shorter
// than three characters, or credential-bearing) are dropped and reported
// with ok=false.
func (s *Store) RecordCommand(cmd string, exitCode int) (event.CommandEvent, bool, error) {
	if !normalize.Recordable(cmd) {
		return event.CommandEvent{}, false, nil
	}

	ev := event.New(cmd, exitCode, s.sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Recent = append(s.snapshot.Recent, ev)
	if len(s.snapshot.Recent) > s.limit {
		s.snapshot.Recent = s.snapshot.Recent[len(s.snapshot.Recent)-s.limit:]
	}
	s.snapshot.LastUpdated = ev.Timestamp

	s.frequency.Counts[normalize.BaseToken(cmd)]++
	s.frequency.LastUpdated = ev.Timestamp

	if err := s.docs.Save(snapshotDoc, &s.snapshot); err != nil {
		return ev, true, fmt.Errorf("persist context: %w", err)
	}
	if err := s.docs.Save(frequencyDoc, &s.frequency); err != nil {
		return ev, true, fmt.Errorf("persist frequency: %w", err)
	}

	return ev, true, nil
}

// RefreshEnvironment re-probes the shell and environment facts and persists
// the snapshot. Each probe is individually guarded, so a missing tool (no
// git, no hostname) degrades that field rather than failing the refresh.
func (s *Store) RefreshEnvironment() error {
	shell := s.probe.ShellInfo()
	env := s.probe.EnvironmentInfo()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Shell = shell
	s.snapshot.Environment = env
	s.snapshot.LastUpdated = event.Now()

	if err := s.docs.Save(snapshotDoc, &s.snapshot); err != nil {
		return fmt.Errorf("persist context: %w", err)
	}
	return nil
}

// Recent returns a copy of the history ring, oldest first.
func (s *Store) Recent() []event.CommandEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.CommandEvent, len(s.snapshot.Recent))
	copy(out, s.snapshot.Recent)
	return out
}

// SuccessfulCommands returns the command strings of history entries that
// exited cleanly, oldest first. This is the live training corpus for the
// sequence model.
func (s *Store) SuccessfulCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, ev := range s.snapshot.Recent {
		if ev.Succeeded() {
			out = append(out, ev.Command)
		}
	}
	return out
}

// Frequency returns the usage count recorded for a base command.
func (s *Store) Frequency(base string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency.Counts[base]
}

// CurrentTask returns the active task, or "" when none is set.
func (s *Store) CurrentTask() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.CurrentTask
}

// RecentTasks returns the recent task list, most recent first.
func (s *Store) RecentTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.tasks.RecentTasks))
	copy(out, s.tasks.RecentTasks)
	return out
}

// SetCurrentTask records task as active and moves it to the front of the
// recent task list, which stays unique and holds at most five entries.
func (s *Store) SetCurrentTask(task string) error {
	if task == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks.CurrentTask = task

	recent := make([]string, 0, len(s.tasks.RecentTasks)+1)
	recent = append(recent, task)
	for _, t := range s.tasks.RecentTasks {
		if t != task {
			recent = append(recent, t)
		}
	}
	if len(recent) > maxRecentTasks {
		recent = recent[:maxRecentTasks]
	}
	s.tasks.RecentTasks = recent
	s.tasks.LastUpdated = event.Now()

	if err := s.docs.Save(taskProfileDoc, &s.tasks); err != nil {
		return fmt.Errorf("persist task profile: %w", err)
	}
	return nil
}
