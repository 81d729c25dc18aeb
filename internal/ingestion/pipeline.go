package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// ErrNoChampions is returned when a load accepts no champion at all.
var ErrNoChampions = errors.New("no champion records loaded")

// PipelineResult summarizes a pipeline run.
type PipelineResult struct {
	Files             int            `json:"files"`
	Champions         int            `json:"champions"`
	Skipped           int            `json:"skipped"`
	Nodes             int            `json:"nodes"`
	Relationships     int            `json:"relationships"`
	DerivedWeaknesses int            `json:"derived_weaknesses"`
	Issues            []*RecordError `json:"-"`
	DurationSecs      float64        `json:"duration_secs"`
}

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// Options tunes RunPipeline.
type Options struct {
	// Strict fails the load on the first invalid record instead of skipping it.
	Strict bool

	Progress ProgressCallback
	Logger   *zap.Logger
}

// Builder assembles a champion graph from records. The vocabulary nodes and
// the archetype counter web are present from the start.
type Builder struct {
	g      *graph.KnowledgeGraph
	strict bool
	seen   map[string]string // champion key -> file it came from
	result PipelineResult
}

// NewBuilder creates a Builder seeded with the vocabulary.
func NewBuilder(strict bool) *Builder {
	g := graph.NewKnowledgeGraph()

	for _, r := range vocab.Roles() {
		g.AddNamedNode(graph.NodeRole, string(r), "")
	}
	for _, m := range vocab.Mechanics() {
		g.AddNamedNode(graph.NodeMechanic, string(m), m.Description())
	}
	for _, a := range vocab.Archetypes() {
		g.AddNamedNode(graph.NodeArchetype, string(a), a.Description())
	}
	for _, c := range vocab.ArchetypeCounterWeb() {
		g.Connect(graph.RelCounters,
			graph.GenerateID(graph.NodeArchetype, string(c.Counter)),
			graph.GenerateID(graph.NodeArchetype, string(c.Target)),
			c.Reason)
	}

	return &Builder{g: g, strict: strict, seen: make(map[string]string)}
}

// AddFile decodes a data file and adds each of its records.
func (b *Builder) AddFile(entry FileEntry) error {
	b.result.Files++

	records, err := DecodeRecords(entry.Content)
	if err != nil {
		return b.reject(&RecordError{File: entry.RelPath, Err: err})
	}
	for _, r := range records {
		if err := b.Add(entry.RelPath, r); err != nil {
			return err
		}
	}
	return nil
}

// Add validates one record and adds it to the graph. Invalid records are
// skipped and reported, unless the builder is strict.
func (b *Builder) Add(file string, r ChampionRecord) error {
	c, err := r.Validate()
	if err != nil {
		return b.reject(&RecordError{File: file, Champion: strings.TrimSpace(r.Name), Err: err})
	}

	key := strings.ToLower(c.Name)
	if prev, dup := b.seen[key]; dup {
		return b.reject(&RecordError{File: file, Champion: c.Name, Err: fmt.Errorf("duplicate of the record in %s", prev)})
	}
	b.seen[key] = file

	b.addChampion(c)
	b.result.Champions++
	return nil
}

func (b *Builder) addChampion(c Champion) {
	node := b.g.AddNamedNode(graph.NodeChampion, c.Name, "")

	b.g.Connect(graph.RelIsA, node.ID, graph.GenerateID(graph.NodeArchetype, string(c.Archetype)), "")
	for _, role := range c.Positions {
		b.g.Connect(graph.RelPlaysIn, node.ID, graph.GenerateID(graph.NodeRole, string(role)), "")
	}

	weakTo := make(map[vocab.Mechanic]bool, len(c.Weaknesses))
	for _, w := range c.Weaknesses {
		weakTo[w.Mechanic] = true
		b.g.Connect(graph.RelWeakTo, node.ID, graph.GenerateID(graph.NodeMechanic, string(w.Mechanic)), w.Reason)
	}

	for _, m := range c.Mechanics {
		b.g.Connect(graph.RelHasMechanic, node.ID, graph.GenerateID(graph.NodeMechanic, string(m.Mechanic)), m.Explanation)

		implied, ok := vocab.ImpliedWeakness(m.Mechanic)
		if !ok || weakTo[implied.WeakTo] {
			continue
		}
		weakTo[implied.WeakTo] = true
		b.g.Connect(graph.RelWeakTo, node.ID, graph.GenerateID(graph.NodeMechanic, string(implied.WeakTo)), implied.Reason)
		b.result.DerivedWeaknesses++
	}
}

func (b *Builder) reject(err *RecordError) error {
	if b.strict {
		return err
	}
	b.result.Skipped++
	b.result.Issues = append(b.result.Issues, err)
	return nil
}

// Finish validates the graph and returns it with the build statistics.
func (b *Builder) Finish() (*graph.KnowledgeGraph, *PipelineResult, error) {
	result := b.result
	result.Nodes = b.g.NodeCount()
	result.Relationships = b.g.RelationshipCount()

	if err := b.g.Validate(); err != nil {
		return nil, &result, err
	}
	if result.Champions == 0 {
		return nil, &result, ErrNoChampions
	}
	return b.g, &result, nil
}

// BuildGraph builds a validated champion graph from data files.
func BuildGraph(entries []FileEntry, strict bool) (*graph.KnowledgeGraph, *PipelineResult, error) {
	b := NewBuilder(strict)
	for _, entry := range entries {
		if err := b.AddFile(entry); err != nil {
			return nil, nil, err
		}
	}
	return b.Finish()
}

// RunPipeline reads the champion data at dataPath, builds the graph and
// replaces the contents of store with it.
func RunPipeline(
	ctx context.Context,
	dataPath string,
	store storage.StorageBackend,
	opts Options,
) (*graph.KnowledgeGraph, *PipelineResult, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string, float64) {}
	}

	progress("Walking files", 0.0)
	entries, err := WalkData(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("walking data: %w", err)
	}
	progress("Walking files", 1.0)

	progress("Building graph", 0.0)
	b := NewBuilder(opts.Strict)
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := b.AddFile(entry); err != nil {
			return nil, nil, fmt.Errorf("building graph: %w", err)
		}
		progress("Building graph", float64(i+1)/float64(len(entries)))
	}

	g, result, err := b.Finish()
	for _, issue := range result.Issues {
		logger.Warn("skipped champion record", zap.String("file", issue.File),
			zap.String("champion", issue.Champion), zap.Error(issue.Err))
	}
	if err != nil {
		return nil, result, fmt.Errorf("building graph: %w", err)
	}
	progress("Building graph", 1.0)

	progress("Loading store", 0.0)
	if err := store.BulkLoad(ctx, g); err != nil {
		return nil, result, fmt.Errorf("loading store: %w", err)
	}
	progress("Loading store", 1.0)

	result.DurationSecs = time.Since(start).Seconds()
	logger.Info("champion data loaded",
		zap.String("path", dataPath),
		zap.Int("files", result.Files),
		zap.Int("champions", result.Champions),
		zap.Int("skipped", result.Skipped),
		zap.Int("nodes", result.Nodes),
		zap.Int("relationships", result.Relationships),
		zap.Int("derived_weaknesses", result.DerivedWeaknesses))
	return g, result, nil
}
