package context

import (
	"fmt"
	"strings"
)

// Digest renders the session picture as a short text block: identity,
// shell, working directory, git state, active task, the last five commands
// with their outcome, and the most used commands. Sections with nothing to
// say are omitted.
func (s *Store) Digest() string {
	s.mu.Lock()
	snap := s.snapshot
	task := s.tasks.CurrentTask
	s.mu.Unlock()

	var sections []string

	sections = append(sections, fmt.Sprintf("User: %s@%s", snap.Shell.User, snap.Shell.Hostname))
	sections = append(sections, fmt.Sprintf("Shell: %s", snap.Shell.Shell))
	sections = append(sections, fmt.Sprintf("Current directory: %s", snap.Environment.CWD))

	if snap.Environment.Git.IsRepo {
		branch := snap.Environment.Git.Branch
		if branch == "" {
			branch = "unknown"
		}
		sections = append(sections, fmt.Sprintf("Git branch: %s", branch))
		if snap.Environment.Git.Status != "" {
			sections = append(sections, "Git status: Changed files detected")
		}
	}

	if task != "" {
		sections = append(sections, fmt.Sprintf("Current task: %s", task))
	}

	recent := snap.Recent
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) > 0 {
		sections = append(sections, "Recent commands:")
		for _, ev := range recent {
			status := "✓"
			if !ev.Succeeded() {
				status = "✗"
			}
			sections = append(sections, fmt.Sprintf("  %s %s", status, ev.Command))
		}
	}

	if top := s.TopFrequent(3); len(top) > 0 {
		sections = append(sections, "Most used commands:")
		for _, fc := range top {
			sections = append(sections, fmt.Sprintf("  %s (used %d times)", fc.Base, fc.Count))
		}
	}

	return strings.Join(sections, "\n")
}
