package engine

import (
	stdcontext "context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cmdlearn/internal/chain"
	"github.com/runger/cmdlearn/internal/context"
	"github.com/runger/cmdlearn/internal/history"
	"github.com/runger/cmdlearn/internal/logging"
	"github.com/runger/cmdlearn/internal/rank"
	"github.com/runger/cmdlearn/internal/store"
	"github.com/runger/cmdlearn/internal/task"
)

// The real subsystems satisfy the engine's contracts.
var (
	_ ContextStore   = (*context.Store)(nil)
	_ ChainPredictor = (*chain.Predictor)(nil)
	_ EventArchive   = (*history.Archive)(nil)
)

// realDetector adapts *task.Detector; the engine needs exactly its methods.
var _ TaskDetector = (*task.Detector)(nil)

type staticProber struct{}

func (staticProber) ShellInfo() context.ShellInfo {
	return context.ShellInfo{Shell: "/bin/bash", User: "dev", Hostname: "box"}
}

func (staticProber) EnvironmentInfo() context.EnvironmentInfo {
	return context.EnvironmentInfo{CWD: "/work"}
}

// TestEndToEnd wires real subsystems over one data directory and drives a
// small session through the full record/suggest/fix cycle.
func TestEndToEnd(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	workDir := t.TempDir()
	logger := logging.Discard()

	docs, err := store.Open(dataDir, store.Options{Logger: logger})
	require.NoError(t, err)

	ctxStore := context.New(docs, context.Options{Logger: logger, Prober: staticProber{}})
	detector := task.New(docs, task.Options{Logger: logger, Sink: ctxStore})
	predictor := chain.New(docs, chain.Options{Logger: logger, Rand: rand.New(rand.NewSource(11))})

	archive, err := history.Open(dataDir + "/events.db")
	require.NoError(t, err)
	defer archive.Close()

	e := New(ctxStore, detector, predictor, Options{
		Logger:     logger,
		Rand:       rand.New(rand.NewSource(11)),
		Archive:    archive,
		WorkingDir: func() string { return workDir },
	})

	ctx := stdcontext.Background()

	session := []struct {
		cmd  string
		code int
	}{
		{"git status", 0},
		{"git add .", 0},
		{"git commit -m wip", 0},
		{"git push origin main", 0},
		{"git add .", 0},
		{"git commit -m more", 0},
		{"npm tets", 1},
		{"npm test", 0},
	}
	for _, step := range session {
		require.NoError(t, e.RecordCommand(ctx, step.cmd, step.code))
	}

	// The git workflow left a transition edge behind.
	suggestions := e.GetSuggestions("git add", "", 5)
	require.NotEmpty(t, suggestions)
	found := false
	for _, s := range suggestions {
		if s.Type == rank.TypeTransition {
			found = true
		}
	}
	assert.True(t, found)

	// The typo correction became a reusable fix.
	fixes := e.GetErrorFix("npm tets", "", 3)
	require.NotEmpty(t, fixes)
	assert.Equal(t, "npm test", fixes[0].Command)

	// Everything reached the archive.
	archived, err := archive.Commands(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, archived, len(session))

	// The digest reflects the session.
	digest := e.GetContextDigest()
	assert.Contains(t, digest, "Recent commands:")
	assert.Contains(t, digest, "git")
}
