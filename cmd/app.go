package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/coach"
	"github.com/Benny93/graphleague-go/internal/config"
	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/ingestion"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/logging"
	"github.com/Benny93/graphleague-go/internal/metrics"
	"github.com/Benny93/graphleague-go/internal/narrate"
	"github.com/Benny93/graphleague-go/internal/query"
	"github.com/Benny93/graphleague-go/internal/storage"
)

// config loads the settings and applies the global flags on top.
func (g *Globals) config() (*config.Config, error) {
	cfg, err := config.Load(g.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.Backend != "" {
		cfg.Backend = g.Backend
	}
	if g.Data != "" {
		cfg.DataPath = g.Data
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app is the wired question pipeline shared by the query commands and the
// servers.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   storage.StorageBackend
	engine  *query.Engine
	svc     *coach.Service
}

// openApp loads the config, opens the graph store and wires the pipeline.
// writable keeps a badger store open for reloads.
func openApp(ctx context.Context, g *Globals, writable bool) (*app, error) {
	a, err := openStore(ctx, g, writable)
	if err != nil {
		return nil, err
	}

	a.engine = query.NewEngine(a.store, a.cfg.QueryConfig(), a.logger, a.metrics)

	gen, narrator, err := a.generators(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	classifier := intent.NewClassifier(gen, a.cfg.ClassifierConfig(), a.logger, a.metrics)
	a.svc = coach.NewService(classifier, dispatch.New(a.engine, a.cfg.CounterLimit), narrator, a.logger)
	return a, nil
}

// openStore loads the config and opens the graph store only. The memory
// backend is filled from the data path on open; the persistent backends
// serve whatever the last load put there.
func openStore(ctx context.Context, g *Globals, writable bool) (*app, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	if err := a.open(ctx, writable); err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func (a *app) open(ctx context.Context, writable bool) error {
	readOnly := !writable && a.cfg.Backend == storage.BackendBadger
	if readOnly {
		if _, err := os.Stat(a.cfg.BadgerPath); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no graph store at %s. Run 'graphleague load' first", a.cfg.BadgerPath)
		}
	}

	store, err := storage.Open(ctx, a.cfg.StorageOptions(readOnly, a.logger))
	if err != nil {
		return fmt.Errorf("opening %s store: %w", a.cfg.Backend, err)
	}
	a.store = store

	if a.cfg.Backend == storage.BackendMemory {
		if _, _, err := ingestion.RunPipeline(ctx, a.cfg.DataPath, store, ingestion.Options{Logger: a.logger}); err != nil {
			_ = store.Close()
			return fmt.Errorf("loading %s: %w", a.cfg.DataPath, err)
		}
	}
	return nil
}

// generators picks Gemini when an API key is configured and the offline
// keyword generator otherwise. The keyword generator knows the champions in
// the store at startup.
func (a *app) generators(ctx context.Context) (llm.Generator, narrate.Narrator, error) {
	if a.cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGeminiGenerator(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return gen, narrate.NewLLMNarrator(gen, a.cfg.NarrateConfig(), a.logger, a.metrics), nil
	}

	champions, err := a.store.GetNodesByLabel(ctx, graph.NodeChampion)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	names := make([]string, 0, len(champions))
	for _, c := range champions {
		names = append(names, c.Name)
	}
	a.logger.Debug("no Gemini API key, using keyword classifier", zap.Int("champions", len(names)))
	return intent.NewKeywordGenerator(names), narrate.TemplateNarrator{}, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
