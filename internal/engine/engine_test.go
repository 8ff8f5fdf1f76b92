package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/logging"
	"github.com/runger/cmdlearn/internal/markov"
	"github.com/runger/cmdlearn/internal/normalize"
	"github.com/runger/cmdlearn/internal/rank"
	"github.com/runger/cmdlearn/internal/task"
)

// Stub collaborators record calls and serve canned data.

type stubContext struct {
	recorded    []string
	currentTask string
	successes   []string
	frequency   []rank.Suggestion
}

func (s *stubContext) RecordCommand(cmd string, exitCode int) (event.CommandEvent, bool, error) {
	if !normalize.Recordable(cmd) {
		return event.CommandEvent{}, false, nil
	}
	s.recorded = append(s.recorded, cmd)
	return event.New(cmd, exitCode, "test"), true, nil
}

func (s *stubContext) RefreshEnvironment() error { return nil }

func (s *stubContext) Recent() []event.CommandEvent {
	out := make([]event.CommandEvent, len(s.recorded))
	for i, cmd := range s.recorded {
		out[i] = event.CommandEvent{Command: cmd}
	}
	return out
}

func (s *stubContext) SuccessfulCommands() []string { return s.successes }
func (s *stubContext) CurrentTask() string          { return s.currentTask }
func (s *stubContext) SuggestByFrequency(prefix string, limit int) []rank.Suggestion {
	return s.frequency
}
func (s *stubContext) Digest() string { return "digest" }

type stubDetector struct {
	detected   string
	confidence float64
	calls      int
	learned    map[string][]string
}

func (s *stubDetector) DetectCurrentTask(dir string, commands []string) (string, float64, string) {
	s.calls++
	return s.detected, s.confidence, ""
}

func (s *stubDetector) LearnFromCommands(commands []string, taskName string) error {
	if s.learned == nil {
		s.learned = make(map[string][]string)
	}
	s.learned[taskName] = append(s.learned[taskName], commands...)
	return nil
}

func (s *stubDetector) Suggestions(dir string) []task.Suggestion { return nil }

type stubChains struct {
	processed   []string
	tasks       []string
	predictions []rank.Suggestion
	fixes       []rank.Suggestion
	trained     [][]string
}

func (s *stubChains) ProcessCommand(command string, exitCode int, taskName string) {
	s.processed = append(s.processed, command)
	s.tasks = append(s.tasks, taskName)
}

func (s *stubChains) PredictNext(currentCmd, taskName string, max int) []rank.Suggestion {
	return s.predictions
}

func (s *stubChains) PredictErrorFix(failedCmd, errorOutput string, max int) []rank.Suggestion {
	return s.fixes
}

func (s *stubChains) Train(history []string) error {
	if len(history) < markov.MinTrainingLines {
		return markov.ErrInsufficientHistory
	}
	s.trained = append(s.trained, history)
	return nil
}

type stubArchive struct {
	appended []event.CommandEvent
	commands []string
}

func (s *stubArchive) Append(ctx context.Context, ev event.CommandEvent) error {
	s.appended = append(s.appended, ev)
	return nil
}

func (s *stubArchive) Commands(ctx context.Context, limit int) ([]string, error) {
	return s.commands, nil
}

func newTestEngine(ctxStore *stubContext, detector *stubDetector, chains *stubChains, archive *stubArchive) *Engine {
	opts := Options{
		Logger:     logging.Discard(),
		Rand:       rand.New(rand.NewSource(1)),
		WorkingDir: func() string { return "/work" },
	}
	if archive != nil {
		opts.Archive = archive
	}
	return New(ctxStore, detector, chains, opts)
}

func TestRecordCommand_RoutesThroughAll(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{}
	detector := &stubDetector{detected: "git_commit", confidence: 0.9}
	chains := &stubChains{}
	archive := &stubArchive{}
	e := newTestEngine(ctxStore, detector, chains, archive)

	require.NoError(t, e.RecordCommand(context.Background(), "git add .", 0))

	assert.Equal(t, []string{"git add ."}, ctxStore.recorded)
	assert.Equal(t, []string{"git add ."}, chains.processed)
	assert.Equal(t, []string{"git_commit"}, chains.tasks)
	require.Len(t, archive.appended, 1)
	assert.Equal(t, "git add .", archive.appended[0].Command)
}

func TestRecordCommand_GuardedCommandStops(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{}
	detector := &stubDetector{}
	chains := &stubChains{}
	archive := &stubArchive{}
	e := newTestEngine(ctxStore, detector, chains, archive)

	require.NoError(t, e.RecordCommand(context.Background(), "export PASSWORD=x", 0))
	require.NoError(t, e.RecordCommand(context.Background(), "ab", 0))

	assert.Empty(t, ctxStore.recorded)
	assert.Empty(t, chains.processed)
	assert.Empty(t, archive.appended)
}

func TestRecordCommand_DetectionSampledWhenTaskKnown(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{currentTask: "web_dev"}
	detector := &stubDetector{detected: "web_dev"}
	chains := &stubChains{}
	e := newTestEngine(ctxStore, detector, chains, nil)

	for i := 0; i < 100; i++ {
		require.NoError(t, e.RecordCommand(context.Background(), "npm run build", 0))
	}

	// With a task already set, detection runs on roughly a tenth of the
	// commands rather than every one.
	assert.Less(t, detector.calls, 50)
	assert.Equal(t, 100, len(chains.processed))
}

func TestRecordCommand_NoArchive(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&stubContext{}, &stubDetector{}, &stubChains{}, nil)
	require.NoError(t, e.RecordCommand(context.Background(), "ls -la", 0))
}

func TestGetSuggestions_MergesChainAndFrequency(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{
		frequency: []rank.Suggestion{
			{Command: "git", Confidence: 0.3, Type: rank.TypeFrequency, Description: "Used 30 times before"},
		},
	}
	chains := &stubChains{
		predictions: []rank.Suggestion{
			{Command: "git commit -m", Confidence: 0.8, Type: rank.TypeTransition, Description: "Follows git (8 times)"},
		},
	}
	e := newTestEngine(ctxStore, &stubDetector{}, chains, nil)

	got := e.GetSuggestions("git add", "", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "git commit -m", got[0].Command)
	assert.Equal(t, rank.TypeTransition, got[0].Type)
	assert.Equal(t, "git", got[1].Command)
}

func TestGetErrorFix_PassThrough(t *testing.T) {
	t.Parallel()

	chains := &stubChains{
		fixes: []rank.Suggestion{
			{Command: "mkdir -p foo", Confidence: 0.7, Type: rank.TypeErrorFix},
		},
	}
	e := newTestEngine(&stubContext{}, &stubDetector{}, chains, nil)

	got := e.GetErrorFix("cd foo", "no such file", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "mkdir -p foo", got[0].Command)
}

func TestDetectCurrentTask(t *testing.T) {
	t.Parallel()

	detector := &stubDetector{detected: "docker", confidence: 0.75}
	e := newTestEngine(&stubContext{}, detector, &stubChains{}, nil)

	result := e.DetectCurrentTask()
	assert.Equal(t, "docker", result.Task)
	assert.Equal(t, 0.75, result.Confidence)
}

func TestLearnFromFeedback_SuccessRecordsAndLearns(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{currentTask: "deploy"}
	detector := &stubDetector{}
	chains := &stubChains{}
	e := newTestEngine(ctxStore, detector, chains, nil)

	require.NoError(t, e.LearnFromFeedback(context.Background(), "push the image", "docker push app", true))

	assert.Equal(t, []string{"docker push app"}, ctxStore.recorded)
	assert.Equal(t, []string{"docker push app"}, detector.learned["deploy"])
}

func TestLearnFromFeedback_FailureIsNoOp(t *testing.T) {
	t.Parallel()

	ctxStore := &stubContext{currentTask: "deploy"}
	detector := &stubDetector{}
	e := newTestEngine(ctxStore, detector, &stubChains{}, nil)

	require.NoError(t, e.LearnFromFeedback(context.Background(), "push the image", "docker push app", false))

	assert.Empty(t, ctxStore.recorded)
	assert.Empty(t, detector.learned)
}

func TestTrainSequenceModel_SourcePreference(t *testing.T) {
	t.Parallel()

	corpus := make([]string, 12)
	for i := range corpus {
		corpus[i] = "git status"
	}

	t.Run("supplied history wins", func(t *testing.T) {
		t.Parallel()
		chains := &stubChains{}
		e := newTestEngine(&stubContext{successes: []string{"ls"}}, &stubDetector{}, chains, nil)

		require.NoError(t, e.TrainSequenceModel(context.Background(), corpus))
		require.Len(t, chains.trained, 1)
		assert.Equal(t, corpus, chains.trained[0])
	})

	t.Run("falls back to live context", func(t *testing.T) {
		t.Parallel()
		chains := &stubChains{}
		e := newTestEngine(&stubContext{successes: corpus}, &stubDetector{}, chains, nil)

		require.NoError(t, e.TrainSequenceModel(context.Background(), nil))
		require.Len(t, chains.trained, 1)
		assert.Equal(t, corpus, chains.trained[0])
	})

	t.Run("falls back to archive", func(t *testing.T) {
		t.Parallel()
		chains := &stubChains{}
		archive := &stubArchive{commands: corpus}
		e := newTestEngine(&stubContext{}, &stubDetector{}, chains, archive)

		require.NoError(t, e.TrainSequenceModel(context.Background(), nil))
		require.Len(t, chains.trained, 1)
		assert.Equal(t, corpus, chains.trained[0])
	})

	t.Run("thin everywhere fails", func(t *testing.T) {
		t.Parallel()
		chains := &stubChains{}
		e := newTestEngine(&stubContext{successes: []string{"ls"}}, &stubDetector{}, chains, nil)

		err := e.TrainSequenceModel(context.Background(), nil)
		assert.ErrorIs(t, err, markov.ErrInsufficientHistory)
	})
}

func TestGetContextDigest(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&stubContext{}, &stubDetector{}, &stubChains{}, nil)
	assert.Equal(t, "digest", e.GetContextDigest())
}
