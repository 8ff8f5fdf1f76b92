// Package normalize provides command-line tokenization and input guards
// shared by the context store and chain predictor.
package normalize

import (
	"strings"

	"github.com/google/shlex"
)

// MinCommandLength is the shortest command the engine records. Anything
// shorter is treated as noise (typos, single-key slips).
const MinCommandLength = 3

// sensitiveMarkers are substrings that mark a command as never-record.
var sensitiveMarkers = []string{"password", "secret"}

// BaseToken returns the first whitespace-delimited word of a command line,
// the coarse identity used by all statistics. Empty input yields "".
func BaseToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Tokens splits a command line honoring shell quoting. Unterminated quotes
// fall back to plain whitespace splitting rather than failing.
func Tokens(cmd string) []string {
	tokens, err := shlex.Split(cmd)
	if err != nil || len(tokens) == 0 {
		return strings.Fields(cmd)
	}
	return tokens
}

// Sensitive reports whether a command should never be persisted because it
// likely carries a credential.
func Sensitive(cmd string) bool {
	lower := strings.ToLower(cmd)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Recordable reports whether a command passes the record guards: non-blank,
// at least MinCommandLength characters, and not sensitive.
func Recordable(cmd string) bool {
	trimmed := strings.TrimSpace(cmd)
	if trimmed == "" || len(trimmed) < MinCommandLength {
		return false
	}
	return !Sensitive(trimmed)
}

// Jaccard computes token-set similarity between two command lines:
// |intersection| / |union| over quote-aware tokens, 0 when the union is
// empty. Quoted arguments count as single tokens, so commands differing
// only inside one quoted string stay highly similar.
func Jaccard(a, b string) float64 {
	aTokens := tokenSet(a)
	bTokens := tokenSet(b)

	union := make(map[string]struct{}, len(aTokens)+len(bTokens))
	intersection := 0
	for tok := range aTokens {
		union[tok] = struct{}{}
	}
	for tok := range bTokens {
		if _, ok := aTokens[tok]; ok {
			intersection++
		}
		union[tok] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(s) {
		set[tok] = struct{}{}
	}
	return set
}
