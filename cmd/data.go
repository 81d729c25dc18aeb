package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Benny93/graphleague-go/internal/config"
	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/ingestion"
	"github.com/Benny93/graphleague-go/internal/logging"
	"github.com/Benny93/graphleague-go/internal/storage"
)

// loadMeta is written next to the badger store after every load.
type loadMeta struct {
	Version  string                    `json:"version"`
	Backend  string                    `json:"backend"`
	DataPath string                    `json:"data_path"`
	Stats    *ingestion.PipelineResult `json:"stats"`
	LoadedAt string                    `json:"loaded_at"`
}

func metaPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.BadgerPath), "meta.json")
}

// LoadCmd loads champion data into the graph store.
type LoadCmd struct {
	Path   string `arg:"" optional:"" help:"Champion data file or directory (default from --data)" type:"path"`
	Strict bool   `help:"Fail on the first invalid record instead of skipping it"`
}

// Run executes the load command.
func (c *LoadCmd) Run(g *Globals, s *Streams) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := g.config()
	if err != nil {
		return err
	}
	if c.Path != "" {
		cfg.DataPath = c.Path
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	color.New(color.FgGreen).Fprintf(s.Out, "Loading %s into the %s store\n", cfg.DataPath, cfg.Backend)

	if cfg.Backend == storage.BackendBadger {
		if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}
	store, err := storage.Open(ctx, cfg.StorageOptions(false, logger))
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	defer func() { _ = store.Close() }()

	progress := func(phase string, pct float64) {
		fmt.Fprintf(s.Out, "\r\033[K%s (%.0f%%)", phase, pct*100)
	}
	_, result, err := ingestion.RunPipeline(ctx, cfg.DataPath, store, ingestion.Options{
		Strict:   c.Strict,
		Progress: progress,
		Logger:   logger,
	})
	fmt.Fprintln(s.Out) // Newline after progress
	if result != nil {
		for _, issue := range result.Issues {
			color.New(color.FgYellow).Fprintf(s.Out, "  skipped %v\n", issue)
		}
	}
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	if cfg.Backend != storage.BackendMemory {
		if err := writeMeta(cfg, result); err != nil {
			return err
		}
	}

	color.New(color.FgGreen).Fprintln(s.Out, "\n✓ Load complete")
	fmt.Fprintf(s.Out, "  Files:          %d\n", result.Files)
	fmt.Fprintf(s.Out, "  Champions:      %d\n", result.Champions)
	fmt.Fprintf(s.Out, "  Skipped:        %d\n", result.Skipped)
	fmt.Fprintf(s.Out, "  Nodes:          %d\n", result.Nodes)
	fmt.Fprintf(s.Out, "  Relationships:  %d\n", result.Relationships)
	fmt.Fprintf(s.Out, "  Duration:       %.2fs\n", result.DurationSecs)
	if cfg.Backend == storage.BackendMemory {
		dimColor.Fprintln(s.Out, "\nThe memory backend keeps nothing; this load only validated the data.")
	}
	return nil
}

func writeMeta(cfg *config.Config, result *ingestion.PipelineResult) error {
	meta := loadMeta{
		Version:  Version,
		Backend:  cfg.Backend,
		DataPath: cfg.DataPath,
		Stats:    result,
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
	}
	path := metaPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing meta.json: %w", err)
	}
	return nil
}

func readMeta(cfg *config.Config) (*loadMeta, error) {
	data, err := os.ReadFile(metaPath(cfg))
	if err != nil {
		return nil, err
	}
	var meta loadMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta.json: %w", err)
	}
	return &meta, nil
}

// StatusCmd shows what the graph store holds.
type StatusCmd struct{}

// Run executes the status command.
func (c *StatusCmd) Run(g *Globals, s *Streams) error {
	ctx := context.Background()
	a, err := openStore(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	fmt.Fprintf(s.Out, "Graph store status (%s)\n", stats.Backend)
	if a.cfg.Backend == storage.BackendMemory {
		fmt.Fprintf(s.Out, "  Data:           %s\n", a.cfg.DataPath)
	} else if meta, err := readMeta(a.cfg); err == nil {
		fmt.Fprintf(s.Out, "  Version:        %s\n", meta.Version)
		fmt.Fprintf(s.Out, "  Data:           %s\n", meta.DataPath)
		fmt.Fprintf(s.Out, "  Last loaded:    %s\n", meta.LoadedAt)
	}
	fmt.Fprintf(s.Out, "  Nodes:          %d\n", stats.Nodes)
	fmt.Fprintf(s.Out, "  Relationships:  %d\n", stats.Relationships)
	for _, label := range graph.NodeLabels() {
		name := string(label)
		fmt.Fprintf(s.Out, "  %-15s %d\n", strings.ToUpper(name[:1])+name[1:]+"s:", stats.ByLabel[name])
	}
	return nil
}

// CleanCmd deletes the local badger store.
type CleanCmd struct {
	Force bool `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run(g *Globals, s *Streams) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.BadgerPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no graph store at %s. Nothing to clean", cfg.BadgerPath)
	}

	if !c.Force {
		fmt.Fprintf(s.Out, "Delete graph store at %s? [y/N] ", cfg.BadgerPath)
		response, _ := bufio.NewReader(s.In).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(s.Out, "Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(cfg.BadgerPath); err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}
	if err := os.Remove(metaPath(cfg)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting meta.json: %w", err)
	}

	color.New(color.FgGreen).Fprintf(s.Out, "Deleted %s\n", cfg.BadgerPath)
	return nil
}
