// Package chain learns command-to-command structure: transition statistics
// between base commands, per-task command chains, error correction
// patterns, and an order-k sequence model, and turns them into ranked
// next-command and error-fix predictions.
package chain

import (
	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/normalize"
)

// maxExemplars caps the stored full-command examples per edge.
const maxExemplars = 5

// exemplarReplaceChance is the probability a full edge replaces one of its
// stored exemplars with a fresh one.
const exemplarReplaceChance = 0.2

// Exemplar is one full command pair observed on an edge.
type Exemplar struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Timestamp float64 `json:"timestamp"`
}

// Edge is the statistics for one base-to-base transition. Count always
// equals SuccessCount plus FailCount.
type Edge struct {
	Count        int        `json:"count"`
	SuccessCount int        `json:"success_count"`
	FailCount    int        `json:"fail_count"`
	Exemplars    []Exemplar `json:"full_examples"`
}

// transitionsDB is the persisted transition table, outer key the previous
// base command, inner key the next.
type transitionsDB struct {
	Transitions map[string]map[string]*Edge `json:"transitions"`
	LastUpdated float64                     `json:"last_updated"`
}

// UpdateChainStats increments the edge from the previous command to the
// current one and records the full pair as an exemplar. Once the exemplar
// list is full, new pairs replace a random slot 20% of the time. Empty
// commands are ignored.
func (p *Predictor) UpdateChainStats(previousCmd, currentCmd string, exitCode int) {
	prevBase := normalize.BaseToken(previousCmd)
	currBase := normalize.BaseToken(currentCmd)
	if prevBase == "" || currBase == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.transitions.Transitions == nil {
		p.transitions.Transitions = make(map[string]map[string]*Edge)
	}
	next, ok := p.transitions.Transitions[prevBase]
	if !ok {
		next = make(map[string]*Edge)
		p.transitions.Transitions[prevBase] = next
	}
	edge, ok := next[currBase]
	if !ok {
		edge = &Edge{}
		next[currBase] = edge
	}

	edge.Count++
	if exitCode == 0 {
		edge.SuccessCount++
	} else {
		edge.FailCount++
	}

	exemplar := Exemplar{From: previousCmd, To: currentCmd, Timestamp: event.Now()}
	if len(edge.Exemplars) < maxExemplars {
		edge.Exemplars = append(edge.Exemplars, exemplar)
	} else if p.rng.Float64() < exemplarReplaceChance {
		edge.Exemplars[p.rng.Intn(maxExemplars)] = exemplar
	}

	p.transitions.LastUpdated = event.Now()
	p.saveTransitionsLocked()
}

// TransitionEdge returns the edge between two base commands, when present.
func (p *Predictor) TransitionEdge(prevBase, currBase string) (Edge, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, ok := p.transitions.Transitions[prevBase]
	if !ok {
		return Edge{}, false
	}
	edge, ok := next[currBase]
	if !ok {
		return Edge{}, false
	}
	return *edge, true
}
