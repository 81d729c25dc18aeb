package storage

import (
	"context"
	"sync"

	"github.com/Benny93/graphleague-go/internal/graph"
)

// MemoryBackend serves an in-process KnowledgeGraph.
type MemoryBackend struct {
	mu       sync.RWMutex
	g        *graph.KnowledgeGraph
	readOnly bool
	closed   bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{g: graph.NewKnowledgeGraph()}
}

// NewMemoryBackendFrom creates an in-memory backend serving g.
func NewMemoryBackendFrom(g *graph.KnowledgeGraph) *MemoryBackend {
	return &MemoryBackend{g: g}
}

// Initialize resets the backend. The path is ignored.
func (m *MemoryBackend) Initialize(_ string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.g = graph.NewKnowledgeGraph()
	m.readOnly = readOnly
	m.closed = false
	return nil
}

// Close implements StorageBackend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.g = nil
	m.closed = true
	return nil
}

// BulkLoad swaps in g. The graph is shared, not copied; callers hand over
// ownership.
func (m *MemoryBackend) BulkLoad(ctx context.Context, g *graph.KnowledgeGraph) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.readOnly {
		return ErrReadOnly
	}
	m.g = g
	return nil
}

// GetNode implements Reader.
func (m *MemoryBackend) GetNode(ctx context.Context, nodeID string) (*graph.GraphNode, error) {
	g, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return g.GetNode(nodeID), nil
}

// GetNodesByLabel implements Reader.
func (m *MemoryBackend) GetNodesByLabel(ctx context.Context, label graph.NodeLabel) ([]*graph.GraphNode, error) {
	g, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return g.GetNodesByLabel(label), nil
}

// GetOutgoing implements Reader.
func (m *MemoryBackend) GetOutgoing(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	g, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return g.GetOutgoing(nodeID, relType), nil
}

// GetIncoming implements Reader.
func (m *MemoryBackend) GetIncoming(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	g, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return g.GetIncoming(nodeID, relType), nil
}

// Stats implements StorageBackend.
func (m *MemoryBackend) Stats(ctx context.Context) (Stats, error) {
	g, err := m.current(ctx)
	if err != nil {
		return Stats{}, err
	}

	byLabel := make(map[string]int)
	for _, label := range graph.NodeLabels() {
		if n := g.CountNodesByLabel(label); n > 0 {
			byLabel[string(label)] = n
		}
	}
	return Stats{
		Backend:       "memory",
		Nodes:         g.NodeCount(),
		Relationships: g.RelationshipCount(),
		ByLabel:       byLabel,
	}, nil
}

// Graph returns the graph currently served, or nil after Close.
func (m *MemoryBackend) Graph() *graph.KnowledgeGraph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.g
}

func (m *MemoryBackend) current(ctx context.Context) (*graph.KnowledgeGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed || m.g == nil {
		return nil, ErrClosed
	}
	return m.g, nil
}
