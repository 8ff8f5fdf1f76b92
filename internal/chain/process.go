package chain

// taskChainChance is the per-command probability of folding the recent
// window into the active task's chains. Sampling keeps chain writes cheap
// while still converging on the real workflows.
const taskChainChance = 0.1

// ProcessCommand feeds one command execution through the chain learners:
// it extends the recent window, updates the transition edge from the
// previous command, records an error correction when a failure is followed
// by a same-base success, and occasionally folds the window's successes
// into the active task's chains.
func (p *Predictor) ProcessCommand(command string, exitCode int, task string) {
	if command == "" {
		return
	}

	p.mu.Lock()
	p.recent = append(p.recent, recentCommand{command, exitCode})
	if len(p.recent) > p.window {
		p.recent = p.recent[len(p.recent)-p.window:]
	}
	n := len(p.recent)
	var prev recentCommand
	if n >= 2 {
		prev = p.recent[n-2]
	}
	throttled := p.rng.Float64() >= taskChainChance
	p.mu.Unlock()

	if n >= 2 {
		p.UpdateChainStats(prev.command, command, exitCode)
	}

	if n >= 3 && exitCode == 0 && prev.exitCode != 0 {
		p.UpdateErrorPatterns(prev.command, command)
	}

	if task != "" && !throttled {
		p.updateTaskChainsFromRecent(task)
	}
}

// updateTaskChainsFromRecent folds the successful commands of the last ten
// window entries into the task's chains.
func (p *Predictor) updateTaskChainsFromRecent(task string) {
	p.mu.Lock()
	recent := p.recent
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	var successes []string
	for _, rc := range recent {
		if rc.exitCode == 0 {
			successes = append(successes, rc.command)
		}
	}
	p.mu.Unlock()

	if len(successes) >= 2 {
		p.UpdateTaskChains(task, successes)
	}
}

// RecentWindow returns the current in-memory command window, oldest first.
func (p *Predictor) RecentWindow() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.recent))
	for i, rc := range p.recent {
		out[i] = rc.command
	}
	return out
}
