package markov

import (
	"math/rand"
	"sort"
	"strings"
)

// maxGeneratedTokens bounds a single generated sentence.
const maxGeneratedTokens = 24

// Generate produces one sentence from scratch. Returns "" when the model
// cannot produce anything.
func (m *Model) Generate(rng *rand.Rand) string {
	return m.GenerateFrom("", rng)
}

// GenerateFrom produces a sentence continuing the given prefix. The walk is
// weighted-random over observed transitions, so callers wanting distinct
// candidates retry with the same rng. Returns "" when the prefix state was
// never observed or the model is empty.
func (m *Model) GenerateFrom(prefix string, rng *rand.Rand) string {
	if m.Empty() {
		return ""
	}

	tokens := strings.Fields(prefix)

	state := make([]string, m.Order)
	for i := range state {
		state[i] = beginToken
	}
	for _, tok := range tokens {
		copy(state, state[1:])
		state[m.Order-1] = tok
	}

	out := append([]string(nil), tokens...)

	for len(out) < maxGeneratedTokens {
		dist, ok := m.Transitions[strings.Join(state, stateSep)]
		if !ok || len(dist) == 0 {
			// Unreached state: nothing observed after this prefix.
			if len(out) == len(tokens) {
				return ""
			}
			break
		}

		next := pick(dist, rng)
		if next == endToken {
			break
		}

		out = append(out, next)
		copy(state, state[1:])
		state[m.Order-1] = next
	}

	if len(out) == len(tokens) {
		return ""
	}
	return strings.Join(out, " ")
}

// pick draws one token from a weighted distribution. Candidates are walked
// in sorted order so the draw depends only on the rng, never on map
// iteration order.
func pick(dist map[string]float64, rng *rand.Rand) string {
	tokens := make([]string, 0, len(dist))
	var total float64
	for tok, w := range dist {
		tokens = append(tokens, tok)
		total += w
	}
	if total <= 0 {
		return endToken
	}
	sort.Strings(tokens)

	target := rng.Float64() * total
	var acc float64
	for _, tok := range tokens {
		acc += dist[tok]
		if acc >= target {
			return tok
		}
	}
	return tokens[len(tokens)-1]
}
