package chain

import (
	"strings"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/normalize"
)

// chainSigSeparator joins base commands into a chain signature.
const chainSigSeparator = "|"

// Chain is one observed command sequence within a task.
type Chain struct {
	Signature string   `json:"signature"`
	Commands  []string `json:"commands"`
	Count     int      `json:"count"`
	FirstSeen float64  `json:"first_seen"`
	LastUsed  float64  `json:"last_used"`
}

// TaskChains aggregates chains and command frequencies for one task.
type TaskChains struct {
	Chains   []Chain        `json:"chains"`
	Commands map[string]int `json:"commands"`
	Count    int            `json:"count"`
}

// taskChainsDB is the persisted per-task chain table.
type taskChainsDB struct {
	Tasks       map[string]*TaskChains `json:"tasks"`
	LastUpdated float64                `json:"last_updated"`
}

// chainSignature reduces a command sequence to its base-command signature.
func chainSignature(commands []string) string {
	bases := make([]string, 0, len(commands))
	for _, cmd := range commands {
		bases = append(bases, normalize.BaseToken(cmd))
	}
	return strings.Join(bases, chainSigSeparator)
}

// UpdateTaskChains records a command sequence under a task. A sequence with
// a known signature bumps that chain's count and freshness; a new one is
// appended. Per-task base-command frequencies are updated either way.
// Sequences shorter than two commands are ignored.
func (p *Predictor) UpdateTaskChains(task string, commands []string) {
	if task == "" || len(commands) < 2 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.taskChains.Tasks == nil {
		p.taskChains.Tasks = make(map[string]*TaskChains)
	}
	tc, ok := p.taskChains.Tasks[task]
	if !ok {
		tc = &TaskChains{Commands: make(map[string]int)}
		p.taskChains.Tasks[task] = tc
	}
	tc.Count++

	sig := chainSignature(commands)
	now := event.Now()

	found := false
	for i := range tc.Chains {
		if tc.Chains[i].Signature == sig {
			tc.Chains[i].Count++
			tc.Chains[i].LastUsed = now
			found = true
			break
		}
	}
	if !found {
		stored := make([]string, len(commands))
		copy(stored, commands)
		tc.Chains = append(tc.Chains, Chain{
			Signature: sig,
			Commands:  stored,
			Count:     1,
			FirstSeen: now,
			LastUsed:  now,
		})
	}

	for _, cmd := range commands {
		tc.Commands[normalize.BaseToken(cmd)]++
	}

	p.taskChains.LastUpdated = now
	p.saveTaskChainsLocked()
}

// TaskChainData returns the chains recorded for a task, when present.
func (p *Predictor) TaskChainData(task string) (TaskChains, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tc, ok := p.taskChains.Tasks[task]
	if !ok {
		return TaskChains{}, false
	}
	return *tc, true
}
