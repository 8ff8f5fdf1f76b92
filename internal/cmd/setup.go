package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/runger/cmdlearn/internal/chain"
	"github.com/runger/cmdlearn/internal/config"
	appcontext "github.com/runger/cmdlearn/internal/context"
	"github.com/runger/cmdlearn/internal/engine"
	"github.com/runger/cmdlearn/internal/history"
	"github.com/runger/cmdlearn/internal/logging"
	"github.com/runger/cmdlearn/internal/store"
	"github.com/runger/cmdlearn/internal/task"
)

// app bundles the wired engine with the resources the command must close.
type app struct {
	engine  *engine.Engine
	cfg     *config.Config
	archive *history.Archive
}

func (a *app) close() {
	if a.archive != nil {
		a.archive.Close()
	}
}

// newApp wires the engine from configuration. The archive is best-effort:
// a broken events database disables archiving rather than the whole CLI.
func newApp() (*app, error) {
	paths := config.DefaultPaths()

	configFile := os.Getenv("CMDLEARN_CONFIG")
	if configFile == "" {
		configFile = paths.ConfigFile()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger := logging.NewFromEnv()

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = paths.DataDir
	}
	docs, err := store.Open(dataDir, store.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctxStore := appcontext.New(docs, appcontext.Options{
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
		SessionID:    os.Getenv("CMDLEARN_SESSION"),
	})
	detector := task.New(docs, task.Options{Logger: logger, Sink: ctxStore})
	predictor := chain.New(docs, chain.Options{
		Logger:       logger,
		Rand:         rand.New(rand.NewSource(seed)),
		Order:        cfg.MarkovOrder,
		RecentWindow: cfg.RecentWindow,
	})

	a := &app{cfg: cfg}

	archive, err := history.Open(paths.EventsDB())
	if err != nil {
		logger.Warn("event archive unavailable", "error", err)
	} else {
		a.archive = archive
	}

	opts := engine.Options{
		Logger:         logger,
		Rand:           rand.New(rand.NewSource(seed + 1)),
		MaxSuggestions: cfg.MaxSuggestions,
	}
	if a.archive != nil {
		opts.Archive = a.archive
	}
	a.engine = engine.New(ctxStore, detector, predictor, opts)

	return a, nil
}
