package chain

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/runger/cmdlearn/internal/markov"
	"github.com/runger/cmdlearn/internal/normalize"
	"github.com/runger/cmdlearn/internal/rank"
	"github.com/runger/cmdlearn/internal/store"
)

// Document names under the data directory.
const (
	transitionsDoc   = "transitions.json"
	taskChainsDoc    = "task_chains.json"
	errorPatternsDoc = "error_patterns.json"
	sequenceModelDoc = "sequence_model.json"
)

// DefaultRecentWindow caps the in-memory command window driving chain and
// error-pattern updates.
const DefaultRecentWindow = 20

// Predictor holds the learned chain state. All methods are safe for
// concurrent use.
type Predictor struct {
	docs   *store.Store
	logger *slog.Logger
	rng    *rand.Rand
	order  int
	window int

	mu            sync.Mutex
	transitions   transitionsDB
	taskChains    taskChainsDB
	errorPatterns errorPatternsDB
	model         *markov.Model
	recent        []recentCommand
}

// recentCommand is one entry of the chain update window.
type recentCommand struct {
	command  string
	exitCode int
}

// Options configures a Predictor.
type Options struct {
	Logger *slog.Logger

	// Rand drives the exemplar reservoir and the task chain throttle.
	// Nil means a time-seeded source.
	Rand *rand.Rand

	// Order is the sequence model state size. Zero means
	// markov.DefaultOrder.
	Order int

	// RecentWindow caps the in-memory command window. Zero means
	// DefaultRecentWindow.
	RecentWindow int
}

// New loads the persisted chain documents and returns a Predictor.
func New(docs *store.Store, opts Options) *Predictor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	order := opts.Order
	if order <= 0 {
		order = markov.DefaultOrder
	}
	window := opts.RecentWindow
	if window <= 0 {
		window = DefaultRecentWindow
	}

	p := &Predictor{docs: docs, logger: logger, rng: rng, order: order, window: window}

	docs.Load(transitionsDoc, &p.transitions)
	docs.Load(taskChainsDoc, &p.taskChains)
	docs.Load(errorPatternsDoc, &p.errorPatterns)

	var model markov.Model
	if docs.Load(sequenceModelDoc, &model) && !model.Empty() {
		p.model = &model
	}

	return p
}

// PredictNext proposes next commands after currentCmd using three
// strategies in reliability order: transition statistics, chains of the
// given task, and the sequence model. Results are deduplicated by command
// with the first strategy keeping the displayed type, then sorted by
// confidence and truncated.
func (p *Predictor) PredictNext(currentCmd, task string, maxSuggestions int) []rank.Suggestion {
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}
	base := normalize.BaseToken(currentCmd)

	transitions := p.transitionSuggestions(base, maxSuggestions)
	chains := p.taskChainSuggestions(base, task)
	sequence := p.sequenceSuggestions(currentCmd, maxSuggestions)

	return rank.Top(rank.Merge(transitions, chains, sequence), maxSuggestions)
}

// transitionSuggestions ranks the outgoing edges of base by count. The
// displayed command is the freshest exemplar, falling back to the bare next
// base.
func (p *Predictor) transitionSuggestions(base string, limit int) []rank.Suggestion {
	if base == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next, ok := p.transitions.Transitions[base]
	if !ok {
		return nil
	}

	type candidate struct {
		base string
		edge *Edge
	}
	candidates := make([]candidate, 0, len(next))
	for nextBase, edge := range next {
		candidates = append(candidates, candidate{nextBase, edge})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].edge.Count != candidates[j].edge.Count {
			return candidates[i].edge.Count > candidates[j].edge.Count
		}
		return candidates[i].base < candidates[j].base
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	suggestions := make([]rank.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		command := c.base
		if n := len(c.edge.Exemplars); n > 0 {
			command = c.edge.Exemplars[n-1].To
		}
		confidence := float64(c.edge.Count) / 10.0
		if confidence > 0.95 {
			confidence = 0.95
		}
		suggestions = append(suggestions, rank.Suggestion{
			Command:     command,
			Confidence:  confidence,
			Type:        rank.TypeTransition,
			Description: fmt.Sprintf("Follows %s (%d times)", base, c.edge.Count),
		})
	}
	return suggestions
}

// taskChainSuggestions proposes the command following base inside the
// task's three highest-count chains.
func (p *Predictor) taskChainSuggestions(base, task string) []rank.Suggestion {
	if base == "" || task == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tc, ok := p.taskChains.Tasks[task]
	if !ok {
		return nil
	}

	chains := make([]Chain, len(tc.Chains))
	copy(chains, tc.Chains)
	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].Count > chains[j].Count
	})
	if len(chains) > 3 {
		chains = chains[:3]
	}

	var suggestions []rank.Suggestion
	for _, chain := range chains {
		for i, cmd := range chain.Commands {
			if normalize.BaseToken(cmd) != base || i >= len(chain.Commands)-1 {
				continue
			}
			confidence := float64(chain.Count) / 5.0
			if confidence > 0.9 {
				confidence = 0.9
			}
			suggestions = append(suggestions, rank.Suggestion{
				Command:     chain.Commands[i+1],
				Confidence:  confidence,
				Type:        rank.TypeTaskChain,
				Description: fmt.Sprintf("Next in %s workflow", task),
			})
			break
		}
	}
	return suggestions
}

// sequenceSuggestions generates continuations of currentCmd from the
// sequence model, each at a fixed low confidence.
func (p *Predictor) sequenceSuggestions(currentCmd string, limit int) []rank.Suggestion {
	if currentCmd == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model == nil {
		return nil
	}

	seen := make(map[string]bool)
	var suggestions []rank.Suggestion
	for i := 0; i < limit; i++ {
		generated := p.model.GenerateFrom(currentCmd, p.rng)
		if generated == "" || generated == currentCmd || seen[generated] {
			continue
		}
		seen[generated] = true
		suggestions = append(suggestions, rank.Suggestion{
			Command:     generated,
			Confidence:  0.6,
			Type:        rank.TypeSequence,
			Description: "Statistical prediction",
		})
	}
	return suggestions
}

// Train rebuilds the sequence model from a history corpus of one command
// per line. Fewer than markov.MinTrainingLines usable lines rejects the
// call with markov.ErrInsufficientHistory. When a model already exists the
// fresh one is merged into it at equal weight, so old structure decays
// rather than vanishing.
func (p *Predictor) Train(history []string) error {
	fresh, err := markov.Train(history, p.order)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	model := fresh
	if p.model != nil {
		combined, err := markov.Combine([]*markov.Model{p.model, fresh}, []float64{1.0, 1.0})
		if err != nil {
			return fmt.Errorf("merge sequence models: %w", err)
		}
		model = combined
	}
	p.model = model

	if err := p.docs.Save(sequenceModelDoc, model); err != nil {
		return fmt.Errorf("persist sequence model: %w", err)
	}
	return nil
}

// HasModel reports whether a trained sequence model is loaded.
func (p *Predictor) HasModel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model != nil
}

func (p *Predictor) saveTransitionsLocked() {
	if err := p.docs.Save(transitionsDoc, &p.transitions); err != nil {
		p.logger.Warn("persist transitions failed", "error", err)
	}
}

func (p *Predictor) saveTaskChainsLocked() {
	if err := p.docs.Save(taskChainsDoc, &p.taskChains); err != nil {
		p.logger.Warn("persist task chains failed", "error", err)
	}
}

func (p *Predictor) saveErrorPatternsLocked() {
	if err := p.docs.Save(errorPatternsDoc, &p.errorPatterns); err != nil {
		p.logger.Warn("persist error patterns failed", "error", err)
	}
}
