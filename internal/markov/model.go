// Package markov implements the order-k sequence model behind the lowest
// prediction tier. Each history line is treated as one sentence of
// whitespace-delimited tokens; the model stores weighted transitions from
// k-token states to the next token and supports weighted combination of
// models and constrained generation from a prefix.
package markov

import (
	"errors"
	"strings"
)

// DefaultOrder is the state size used when none is configured.
const DefaultOrder = 2

// MinTrainingLines is the minimum corpus size accepted for training.
const MinTrainingLines = 10

// ErrInsufficientHistory is returned when the training corpus is too small.
var ErrInsufficientHistory = errors.New("insufficient command history for training")

// ErrNoModel is returned when generation is attempted without a trained model.
var ErrNoModel = errors.New("no sequence model available")

// Boundary tokens padding the start and terminating sentences. The unit
// separator keeps state keys unambiguous for any printable token.
const (
	beginToken = "\x02"
	endToken   = "\x03"
	stateSep   = "\x1f"
)

// Model is a trained order-k token transition model. Weights are floats so
// that Combine can scale models without losing precision.
type Model struct {
	Order       int                           `json:"order"`
	Transitions map[string]map[string]float64 `json:"transitions"`
}

// Train builds a model of the given order from newline-style sentences.
// It returns ErrInsufficientHistory when fewer than MinTrainingLines
// non-blank lines are supplied.
func Train(lines []string, order int) (*Model, error) {
	if order < 1 {
		order = DefaultOrder
	}

	var sentences [][]string
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		sentences = append(sentences, tokens)
	}

	if len(sentences) < MinTrainingLines {
		return nil, ErrInsufficientHistory
	}

	m := &Model{
		Order:       order,
		Transitions: make(map[string]map[string]float64),
	}

	for _, tokens := range sentences {
		m.addSentence(tokens, 1.0)
	}

	return m, nil
}

// addSentence folds one token sequence into the transition table with the
// given weight.
func (m *Model) addSentence(tokens []string, weight float64) {
	state := make([]string, m.Order)
	for i := range state {
		state[i] = beginToken
	}

	for _, tok := range append(tokens, endToken) {
		key := strings.Join(state, stateSep)
		dist := m.Transitions[key]
		if dist == nil {
			dist = make(map[string]float64)
			m.Transitions[key] = dist
		}
		dist[tok] += weight

		copy(state, state[1:])
		state[m.Order-1] = tok
	}
}

// Combine merges models into a single model by summing weighted transition
// counts. Models must share the same order; weights align by index and
// default to 1.0 when the slice runs short. Nil models are skipped.
func Combine(models []*Model, weights []float64) (*Model, error) {
	var out *Model

	for i, src := range models {
		if src == nil {
			continue
		}

		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}

		if out == nil {
			out = &Model{
				Order:       src.Order,
				Transitions: make(map[string]map[string]float64),
			}
		} else if src.Order != out.Order {
			return nil, errors.New("cannot combine models of different order")
		}

		for key, dist := range src.Transitions {
			merged := out.Transitions[key]
			if merged == nil {
				merged = make(map[string]float64, len(dist))
				out.Transitions[key] = merged
			}
			for tok, count := range dist {
				merged[tok] += count * w
			}
		}
	}

	if out == nil {
		return nil, ErrNoModel
	}
	return out, nil
}

// Empty reports whether the model holds no transitions.
func (m *Model) Empty() bool {
	return m == nil || len(m.Transitions) == 0
}
