// Package storage provides the graph store backends for GraphLeague.
//
// It defines the Reader contract the query engine traverses and the
// StorageBackend lifecycle that every implementation satisfies, along with
// the error kinds shared across backends.
package storage

import (
	"context"
	"errors"

	"github.com/Benny93/graphleague-go/internal/graph"
)

var (
	// ErrUnavailable marks a store that could not be reached or timed out.
	// It is distinct from a reachable store with zero matching rows.
	ErrUnavailable = errors.New("graph store unavailable")

	// ErrClosed is returned by a backend used after Close.
	ErrClosed = errors.New("storage backend closed")

	// ErrReadOnly is returned by BulkLoad on a backend opened read-only.
	ErrReadOnly = errors.New("storage backend is read-only")
)

// Reader is the query-only capability the engine depends on.
//
// Implementations must be safe for concurrent use. Lookups that find nothing
// return nil without an error.
type Reader interface {
	// GetNode returns a single node by ID, or nil if not found.
	GetNode(ctx context.Context, nodeID string) (*graph.GraphNode, error)

	// GetNodesByLabel returns all nodes with the given label.
	GetNodesByLabel(ctx context.Context, label graph.NodeLabel) ([]*graph.GraphNode, error)

	// GetOutgoing returns relationships of relType leaving nodeID.
	// An empty relType matches every type.
	GetOutgoing(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error)

	// GetIncoming returns relationships of relType arriving at nodeID.
	// An empty relType matches every type.
	GetIncoming(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error)
}

// StorageBackend is a Reader with a scoped lifecycle: it is opened once at
// process start, loaded by ingestion, and closed on shutdown.
type StorageBackend interface {
	Reader

	// BulkLoad replaces the entire store with the contents of the graph.
	BulkLoad(ctx context.Context, g *graph.KnowledgeGraph) error

	// Stats reports how much the store holds.
	Stats(ctx context.Context) (Stats, error)

	// Close releases all resources held by the backend.
	Close() error
}

// Stats summarizes the contents of a backend.
type Stats struct {
	Backend       string         `json:"backend"`
	Nodes         int            `json:"nodes"`
	Relationships int            `json:"relationships"`
	ByLabel       map[string]int `json:"by_label,omitempty"`
}
