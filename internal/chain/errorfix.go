package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/normalize"
	"github.com/runger/cmdlearn/internal/rank"
)

// maxErrorPatterns caps stored corrections per base command; the newest
// are kept.
const maxErrorPatterns = 10

// jaccardThreshold is the minimum failure similarity for a stored
// correction to be suggested.
const jaccardThreshold = 0.5

// ErrorPattern is one observed failure-then-fix pair.
type ErrorPattern struct {
	Failed    string  `json:"failed"`
	Fixed     string  `json:"fixed"`
	Timestamp float64 `json:"timestamp"`
}

// errorPatternsDB is the persisted correction table keyed by base command.
type errorPatternsDB struct {
	Patterns    map[string][]ErrorPattern `json:"patterns"`
	LastUpdated float64                   `json:"last_updated"`
}

// UpdateErrorPatterns records that a failed command was followed by a
// successful one. Only same-base pairs are kept: a retry of the same tool
// reads as a correction, a different tool does not.
func (p *Predictor) UpdateErrorPatterns(failedCmd, successfulCmd string) {
	failedBase := normalize.BaseToken(failedCmd)
	successBase := normalize.BaseToken(successfulCmd)
	if failedBase == "" || successBase == "" || failedBase != successBase {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.errorPatterns.Patterns == nil {
		p.errorPatterns.Patterns = make(map[string][]ErrorPattern)
	}

	patterns := append(p.errorPatterns.Patterns[failedBase], ErrorPattern{
		Failed:    failedCmd,
		Fixed:     successfulCmd,
		Timestamp: event.Now(),
	})
	if len(patterns) > maxErrorPatterns {
		sort.SliceStable(patterns, func(i, j int) bool {
			return patterns[i].Timestamp < patterns[j].Timestamp
		})
		patterns = patterns[len(patterns)-maxErrorPatterns:]
	}
	p.errorPatterns.Patterns[failedBase] = patterns

	p.errorPatterns.LastUpdated = event.Now()
	p.saveErrorPatternsLocked()
}

// PredictErrorFix proposes fixes for a failed command. Stored corrections
// for the same base command are scored by Jaccard similarity between the
// failures (kept above 0.5, confidence similarity*0.9). Two fixed
// heuristics read the error output: a missing directory on cd suggests
// creating it (0.7), and "command not found" suggests installing the tool
// (0.6).
func (p *Predictor) PredictErrorFix(failedCmd, errorOutput string, maxSuggestions int) []rank.Suggestion {
	if failedCmd == "" {
		return nil
	}
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}

	var suggestions []rank.Suggestion
	base := normalize.BaseToken(failedCmd)

	p.mu.Lock()
	patterns := p.errorPatterns.Patterns[base]
	p.mu.Unlock()

	for _, pattern := range patterns {
		similarity := normalize.Jaccard(failedCmd, pattern.Failed)
		if similarity <= jaccardThreshold {
			continue
		}
		suggestions = append(suggestions, rank.Suggestion{
			Command:     pattern.Fixed,
			Confidence:  similarity * 0.9,
			Type:        rank.TypeErrorFix,
			Description: fmt.Sprintf("Fix for similar error (%.2f similarity)", similarity),
		})
	}

	lowerErr := strings.ToLower(errorOutput)

	if base == "cd" && strings.Contains(lowerErr, "no such file") {
		if target := cdTarget(failedCmd); target != "" {
			suggestions = append(suggestions, rank.Suggestion{
				Command:     "mkdir -p " + target,
				Confidence:  0.7,
				Type:        rank.TypeErrorFix,
				Description: "Create missing directory",
			})
		}
	}

	if strings.Contains(lowerErr, "command not found") && base != "" {
		suggestions = append(suggestions, rank.Suggestion{
			Command:     fmt.Sprintf("which %s || apt-get install %s", base, base),
			Confidence:  0.6,
			Type:        rank.TypeErrorFix,
			Description: "Install missing command",
		})
	}

	return rank.Top(suggestions, maxSuggestions)
}

// cdTarget extracts the directory argument of a cd command. Tokenization
// honors shell quoting, so a quoted path with spaces comes back as one
// target and is re-quoted for the suggested command.
func cdTarget(cmd string) string {
	fields := normalize.Tokens(cmd)
	if len(fields) < 2 || fields[0] != "cd" {
		return ""
	}
	target := fields[1]
	if strings.ContainsAny(target, " \t") {
		return `"` + target + `"`
	}
	return target
}
