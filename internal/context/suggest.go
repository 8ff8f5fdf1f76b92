package context

import (
	"fmt"
	"sort"
	"strings"

	"github.com/runger/cmdlearn/internal/rank"
)

// SuggestByFrequency ranks base commands matching prefix by how often they
// have been used. Confidence is min(count/100, 0.9), so a command needs
// heavy use to rival the chain strategies.
func (s *Store) SuggestByFrequency(prefix string, limit int) []rank.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		base  string
		count int
	}
	var matches []entry
	for base, count := range s.frequency.Counts {
		if strings.HasPrefix(base, prefix) {
			matches = append(matches, entry{base, count})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].base < matches[j].base
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	suggestions := make([]rank.Suggestion, 0, len(matches))
	for _, m := range matches {
		conf := float64(m.count) / 100.0
		if conf > 0.9 {
			conf = 0.9
		}
		suggestions = append(suggestions, rank.Suggestion{
			Command:     m.base,
			Confidence:  conf,
			Type:        rank.TypeFrequency,
			Description: fmt.Sprintf("Used %d times before", m.count),
		})
	}
	return suggestions
}

// TopFrequent returns the most-used base commands with their counts,
// highest first.
func (s *Store) TopFrequent(limit int) []FrequentCommand {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FrequentCommand, 0, len(s.frequency.Counts))
	for base, count := range s.frequency.Counts {
		out = append(out, FrequentCommand{Base: base, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Base < out[j].Base
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FrequentCommand pairs a base command with its usage count.
type FrequentCommand struct {
	Base  string `json:"base"`
	Count int    `json:"count"`
}
