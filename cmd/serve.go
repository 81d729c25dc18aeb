package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/api"
	"github.com/Benny93/graphleague-go/internal/ingestion"
	"github.com/Benny93/graphleague-go/mcp"
)

// ServeCmd starts the MCP server with optional watch mode.
type ServeCmd struct {
	Watch bool `short:"w" help:"Reload the graph when the champion data changes"`
}

// Run executes the serve command. Stdout carries JSON-RPC only; logs go to
// stderr.
func (c *ServeCmd) Run(g *Globals, s *Streams) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, g, c.Watch)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Watch {
		a.watch(ctx)
	}

	server := mcp.NewServer(a.svc, a.engine, a.store, mcp.Options{
		CounterLimit: a.cfg.CounterLimit,
		Version:      Version,
		Logger:       a.logger,
	})
	a.logger.Info("MCP server started", zap.Bool("watch", c.Watch), zap.String("backend", a.cfg.Backend))

	err = server.Run(ctx, s.In, s.Out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HTTPCmd starts the HTTP API.
type HTTPCmd struct {
	Addr    string        `help:"Listen address (default from GRAPHLEAGUE_HTTP_ADDR)"`
	Watch   bool          `short:"w" help:"Reload the graph when the champion data changes"`
	Timeout time.Duration `default:"3m" help:"Per-request timeout"`
}

// Run executes the http command.
func (c *HTTPCmd) Run(g *Globals) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, g, c.Watch)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Watch {
		a.watch(ctx)
	}

	addr := c.Addr
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(a.svc, a.engine, api.Options{
			Timeout:      c.Timeout,
			CounterLimit: a.cfg.CounterLimit,
			Metrics:      a.metrics,
			Logger:       a.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down HTTP server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// watch reloads the store in the background until ctx is done.
func (a *app) watch(ctx context.Context) {
	go func() {
		err := ingestion.Watch(ctx, a.cfg.DataPath, a.store, ingestion.WatchOptions{
			Pipeline: ingestion.Options{Logger: a.logger},
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("watch stopped", zap.Error(err))
		}
	}()
	a.logger.Info("watching champion data", zap.String("path", a.cfg.DataPath))
}
