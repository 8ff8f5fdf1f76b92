package task

import (
	"fmt"
	"strings"
)

// Suggestion proposes a task the user might want to start.
type Suggestion struct {
	Task        string  `json:"task"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// Suggestions proposes tasks for a directory: patterns whose file signals
// overlap the detected project type score 0.7, recently performed tasks
// score 0.5 (at most three, most recent first).
func (d *Detector) Suggestions(directory string) []Suggestion {
	projectType, _, _ := d.DetectProjectType(directory)

	d.mu.Lock()
	defer d.mu.Unlock()

	var suggestions []Suggestion
	seen := make(map[string]bool)

	if projectType != "" {
		for _, pattern := range d.db.CommandPatterns {
			if !patternMatchesProject(pattern, projectType) {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Task:        pattern.Name,
				Description: pattern.Description,
				Confidence:  0.7,
				Reason:      fmt.Sprintf("Matches %s project files", projectType),
			})
			seen[pattern.Name] = true
		}
	}

	recent := 0
	for i := len(d.history.History) - 1; i >= 0 && recent < 3; i-- {
		entry := d.history.History[i]
		if seen[entry.Task] {
			continue
		}
		seen[entry.Task] = true
		recent++

		description := ""
		for _, pattern := range d.db.CommandPatterns {
			if pattern.Name == entry.Task {
				description = pattern.Description
				break
			}
		}
		suggestions = append(suggestions, Suggestion{
			Task:        entry.Task,
			Description: description,
			Confidence:  0.5,
			Reason:      "Recently performed task",
		})
	}

	sortSuggestions(suggestions)
	return suggestions
}

// patternMatchesProject reports whether any of the pattern's file signals
// occur in the project type name, tying tasks like "web_dev" to
// "node_project" through shared signals.
func patternMatchesProject(pattern Pattern, projectType string) bool {
	for _, fp := range pattern.Files {
		if fp != "" && strings.Contains(projectType, fp) {
			return true
		}
	}
	return false
}
