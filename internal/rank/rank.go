// Package rank defines the ranked suggestion type shared by all prediction
// strategies and the fusion rules that merge them into one list.
package rank

import "sort"

// Strategy tags identify which prediction source produced a suggestion.
const (
	TypeTransition = "transition"
	TypeTaskChain  = "task_chain"
	TypeSequence   = "sequence"
	TypeFrequency  = "frequency"
	TypeErrorFix   = "error_fix"
)

// Suggestion is one ranked candidate command.
type Suggestion struct {
	Command     string  `json:"command"`
	Confidence  float64 `json:"confidence"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
}

// Merge fuses suggestions from multiple strategies, in strategy order.
// Deduplication is by exact command string: the first occurrence keeps its
// type and description, but the merged confidence is the maximum seen.
func Merge(lists ...[]Suggestion) []Suggestion {
	index := make(map[string]int)
	var merged []Suggestion

	for _, list := range lists {
		for _, s := range list {
			if s.Command == "" {
				continue
			}
			if i, ok := index[s.Command]; ok {
				if s.Confidence > merged[i].Confidence {
					merged[i].Confidence = s.Confidence
				}
				continue
			}
			index[s.Command] = len(merged)
			merged = append(merged, s)
		}
	}

	return merged
}

// Top sorts by confidence descending (stable, so earlier strategies win
// ties) and truncates to limit.
func Top(suggestions []Suggestion, limit int) []Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
