// Package query implements the graph query engine: counter-pick scoring,
// mechanic search and archetype counters over a storage.Reader.
//
// The engine is stateless between calls. Every store failure is returned
// wrapped with storage.ErrUnavailable so callers can tell "no data" apart
// from "could not reach the data".
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/metrics"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// Operation names used in logs and metrics.
const (
	OpCounterPick       = "counter_pick"
	OpMechanicSearch    = "mechanic_search"
	OpArchetypeCounters = "archetype_counters"
)

// Config holds the scoring weights and result caps.
type Config struct {
	ArchetypeWeight     int           // score per archetype COUNTERS edge
	MechanicWeight      int           // score per exploited mechanic weakness
	DefaultCounterLimit int           // counter picks returned when no limit is given
	SearchLimit         int           // cap for mechanic and archetype searches
	Timeout             time.Duration // bound on one operation; 0 disables
}

// DefaultConfig returns the standard weights and caps.
func DefaultConfig() Config {
	return Config{
		ArchetypeWeight:     1,
		MechanicWeight:      2,
		DefaultCounterLimit: 3,
		SearchLimit:         5,
		Timeout:             10 * time.Second,
	}
}

// Engine answers structured queries against the champion graph.
type Engine struct {
	store   storage.Reader
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an engine over store. Zero config fields take their
// defaults.
func NewEngine(store storage.Reader, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Engine {
	def := DefaultConfig()
	if cfg.ArchetypeWeight <= 0 {
		cfg.ArchetypeWeight = def.ArchetypeWeight
	}
	if cfg.MechanicWeight <= 0 {
		cfg.MechanicWeight = def.MechanicWeight
	}
	if cfg.DefaultCounterLimit <= 0 {
		cfg.DefaultCounterLimit = def.DefaultCounterLimit
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, cfg: cfg, logger: logger, metrics: m}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// begin bounds ctx by the configured timeout and returns a finish func that
// records duration and failures for op.
func (e *Engine) begin(ctx context.Context, op string) (context.Context, func(results int, err error)) {
	start := time.Now()
	cancel := context.CancelFunc(func() {})
	if e.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
	}
	return ctx, func(results int, err error) {
		cancel()
		d := time.Since(start)
		e.metrics.ObserveQuery(op, d)
		if err != nil {
			e.metrics.StoreError(op)
			e.logger.Error("query failed", zap.String("operation", op), zap.Duration("duration", d), zap.Error(err))
			return
		}
		e.logger.Debug("query done", zap.String("operation", op), zap.Int("results", results), zap.Duration("duration", d))
	}
}

// unavailable wraps a store error as StoreUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
}

// laneMembers returns the champion IDs playing lane, or nil when lane is
// empty (no filter).
func (e *Engine) laneMembers(ctx context.Context, lane vocab.Role) (map[string]bool, error) {
	if lane == "" {
		return nil, nil
	}
	rels, err := e.store.GetIncoming(ctx, graph.GenerateID(graph.NodeRole, string(lane)), graph.RelPlaysIn)
	if err != nil {
		return nil, err
	}
	members := make(map[string]bool, len(rels))
	for _, rel := range rels {
		members[rel.Source] = true
	}
	return members, nil
}

// resolveChampion finds a champion by exact ID, then by a case- and
// punctuation-insensitive name match ("kaisa" finds "Kai'Sa").
func (e *Engine) resolveChampion(ctx context.Context, name string) (*graph.GraphNode, error) {
	name = strings.TrimSpace(name)
	node, err := e.store.GetNode(ctx, graph.GenerateID(graph.NodeChampion, name))
	if err != nil {
		return nil, err
	}
	if node != nil && node.Label == graph.NodeChampion {
		return node, nil
	}

	want := nameKey(name)
	if want == "" {
		return nil, nil
	}
	champions, err := e.store.GetNodesByLabel(ctx, graph.NodeChampion)
	if err != nil {
		return nil, err
	}
	for _, c := range champions {
		if nameKey(c.Name) == want {
			return c, nil
		}
	}
	return nil, nil
}

func nameKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nodeName returns the name part of a node ID.
func nodeName(id string) string {
	if _, name, ok := graph.ParseID(id); ok {
		return name
	}
	return id
}

// sortedByTarget orders relationships by target ID for stable reason lists.
func sortedByTarget(rels []*graph.GraphRelationship) []*graph.GraphRelationship {
	sort.Slice(rels, func(i, j int) bool { return rels[i].Target < rels[j].Target })
	return rels
}
