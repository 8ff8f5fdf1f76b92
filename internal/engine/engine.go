// Package engine is the facade over the prediction subsystems: it routes
// observed commands into the context store, task detector, chain learner,
// and event archive, and serves suggestions, error fixes, and digests from
// them.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/markov"
	"github.com/runger/cmdlearn/internal/normalize"
	"github.com/runger/cmdlearn/internal/rank"
	"github.com/runger/cmdlearn/internal/task"
)

// taskDetectChance is the per-command probability of re-running task
// detection once a task is already known. Detection walks the working
// directory, so it is sampled rather than run every time.
const taskDetectChance = 0.1

// ContextStore is the live session picture.
type ContextStore interface {
	RecordCommand(cmd string, exitCode int) (event.CommandEvent, bool, error)
	RefreshEnvironment() error
	Recent() []event.CommandEvent
	SuccessfulCommands() []string
	CurrentTask() string
	SuggestByFrequency(prefix string, limit int) []rank.Suggestion
	Digest() string
}

// TaskDetector identifies what the user is working on.
type TaskDetector interface {
	DetectCurrentTask(directory string, commands []string) (taskName string, confidence float64, project string)
	LearnFromCommands(commands []string, taskName string) error
	Suggestions(directory string) []task.Suggestion
}

// ChainPredictor learns command structure and proposes continuations.
type ChainPredictor interface {
	ProcessCommand(command string, exitCode int, taskName string)
	PredictNext(currentCmd, taskName string, maxSuggestions int) []rank.Suggestion
	PredictErrorFix(failedCmd, errorOutput string, maxSuggestions int) []rank.Suggestion
	Train(history []string) error
}

// EventArchive is the long-term command log.
type EventArchive interface {
	Append(ctx context.Context, ev event.CommandEvent) error
	Commands(ctx context.Context, limit int) ([]string, error)
}

// Engine wires the subsystems together. Collaborators are injected; a nil
// archive disables archiving, everything else is required.
type Engine struct {
	ctx      ContextStore
	detector TaskDetector
	chains   ChainPredictor
	archive  EventArchive
	logger   *slog.Logger
	rng      *rand.Rand
	workDir  func() string

	maxSuggestions int
}

// Options configures an Engine.
type Options struct {
	Logger *slog.Logger

	// Rand drives the task re-detection throttle. Nil means time-seeded.
	Rand *rand.Rand

	// MaxSuggestions is the default suggestion list length. Zero means 5.
	MaxSuggestions int

	// Archive is optional long-term storage for events.
	Archive EventArchive

	// WorkingDir resolves the directory task detection runs against.
	// Nil means the process working directory.
	WorkingDir func() string
}

// New builds an Engine over the given collaborators.
func New(ctxStore ContextStore, detector TaskDetector, chains ChainPredictor, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxSuggestions := opts.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}
	workDir := opts.WorkingDir
	if workDir == nil {
		workDir = processWorkingDir
	}

	return &Engine{
		ctx:            ctxStore,
		detector:       detector,
		chains:         chains,
		archive:        opts.Archive,
		logger:         logger,
		rng:            rng,
		workDir:        workDir,
		maxSuggestions: maxSuggestions,
	}
}

// RecordCommand feeds one command execution through every learner. Guarded
// commands (blank, too short, credential-bearing) are dropped before any
// subsystem sees them. Archive failures are logged, never surfaced: losing
// one archived event must not break the shell hook.
func (e *Engine) RecordCommand(ctx context.Context, command string, exitCode int) error {
	ev, ok, err := e.ctx.RecordCommand(command, exitCode)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	currentTask := e.ctx.CurrentTask()
	if currentTask == "" || e.rng.Float64() < taskDetectChance {
		if detected, _, _ := e.detector.DetectCurrentTask(e.workDir(), e.recentCommands()); detected != "" {
			currentTask = detected
		}
	}

	e.chains.ProcessCommand(command, exitCode, currentTask)

	if e.archive != nil {
		if err := e.archive.Append(ctx, ev); err != nil {
			e.logger.Warn("archive append failed", "error", err)
		}
	}
	return nil
}

// GetContextDigest returns the session picture as a text block.
func (e *Engine) GetContextDigest() string {
	return e.ctx.Digest()
}

// GetSuggestions merges chain predictions for the current command with
// frequency-ranked matches on its base token.
func (e *Engine) GetSuggestions(currentCmd, taskName string, limit int) []rank.Suggestion {
	if limit <= 0 {
		limit = e.maxSuggestions
	}
	if taskName == "" {
		taskName = e.ctx.CurrentTask()
	}

	chains := e.chains.PredictNext(currentCmd, taskName, limit)
	frequency := e.ctx.SuggestByFrequency(normalize.BaseToken(currentCmd), limit)

	return rank.Top(rank.Merge(chains, frequency), limit)
}

// GetErrorFix proposes fixes for a failed command given its error output.
func (e *Engine) GetErrorFix(failedCmd, errorOutput string, limit int) []rank.Suggestion {
	if limit <= 0 {
		limit = 3
	}
	return e.chains.PredictErrorFix(failedCmd, errorOutput, limit)
}

// TaskResult is the outcome of task detection.
type TaskResult struct {
	Task       string  `json:"task"`
	Confidence float64 `json:"confidence"`
	Project    string  `json:"project,omitempty"`
}

// DetectCurrentTask runs full task detection against the working directory
// and the recent command history.
func (e *Engine) DetectCurrentTask() TaskResult {
	taskName, confidence, project := e.detector.DetectCurrentTask(e.workDir(), e.recentCommands())
	return TaskResult{Task: taskName, Confidence: confidence, Project: project}
}

// TaskSuggestions proposes tasks for the working directory.
func (e *Engine) TaskSuggestions() []task.Suggestion {
	return e.detector.Suggestions(e.workDir())
}

// LearnFromFeedback folds an accepted suggestion back into the learners: a
// successful command is recorded as executed and, when a task is active,
// added to that task's command patterns. Failed feedback is ignored; a
// rejected suggestion carries no signal about what the right command was.
func (e *Engine) LearnFromFeedback(ctx context.Context, query, command string, success bool) error {
	if !success || command == "" {
		return nil
	}

	if err := e.RecordCommand(ctx, command, 0); err != nil {
		return err
	}

	if currentTask := e.ctx.CurrentTask(); currentTask != "" {
		if err := e.detector.LearnFromCommands([]string{command}, currentTask); err != nil {
			e.logger.Warn("feedback pattern learning failed", "query", query, "error", err)
		}
	}
	return nil
}

// LearnTaskCommands teaches the detector that commands belong to a task.
func (e *Engine) LearnTaskCommands(commands []string, taskName string) error {
	return e.detector.LearnFromCommands(commands, taskName)
}

// TrainSequenceModel rebuilds the sequence model. The corpus is the first
// non-empty source in preference order: the supplied history, successful
// commands from the live context, then the event archive. Fewer than ten
// usable lines rejects the call with markov.ErrInsufficientHistory.
func (e *Engine) TrainSequenceModel(ctx context.Context, history []string) error {
	if len(history) == 0 {
		history = e.ctx.SuccessfulCommands()
	}
	if len(history) < markov.MinTrainingLines && e.archive != nil {
		archived, err := e.archive.Commands(ctx, 0)
		if err != nil {
			e.logger.Warn("archive read for training failed", "error", err)
		} else if len(archived) > len(history) {
			history = archived
		}
	}
	return e.chains.Train(history)
}

// RefreshEnvironment re-probes the shell environment.
func (e *Engine) RefreshEnvironment() error {
	return e.ctx.RefreshEnvironment()
}

// recentCommands flattens the history ring to command strings.
func (e *Engine) recentCommands() []string {
	recent := e.ctx.Recent()
	out := make([]string, len(recent))
	for i, ev := range recent {
		out[i] = ev.Command
	}
	return out
}

func processWorkingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
