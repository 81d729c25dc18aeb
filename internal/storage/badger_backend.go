package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/Benny93/graphleague-go/internal/graph"
)

// Key prefixes for different data types
const (
	prefixNode     = "n:"     // node data, keyed by node ID ("n:champion:Ahri")
	prefixRel      = "r:"     // relationship data
	prefixIncoming = "i:in:"  // incoming adjacency index
	prefixOutgoing = "i:out:" // outgoing adjacency index
)

// BadgerBackend is a BadgerDB-backed storage implementation.
//
// Adjacency is kept as index keys of the form
// "i:out:<source>:<TYPE>:<relID>" so that a typed traversal is one prefix scan.
type BadgerBackend struct {
	db                *badger.DB
	mu                sync.RWMutex
	readOnly          bool
	nodeCount         int
	relationshipCount int
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}
	b.readOnly = readOnly

	return b.recount()
}

// recount refreshes the cached node and relationship counts.
// Must be called with the write lock held.
func (b *BadgerBackend) recount() error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		b.nodeCount = countPrefix(txn, opts, prefixNode)
		b.relationshipCount = countPrefix(txn, opts, prefixRel)
		return nil
	})
}

func countPrefix(txn *badger.Txn, opts badger.IteratorOptions, prefix string) int {
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	return err
}

// BulkLoad replaces the entire store with the contents of the graph.
func (b *BadgerBackend) BulkLoad(ctx context.Context, g *graph.KnowledgeGraph) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	if b.readOnly {
		return ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.db.DropAll(); err != nil {
		return fmt.Errorf("dropping existing data: %w", err)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	nodes, rels := 0, 0

	for node := range g.IterNodes() {
		data, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("marshaling node: %w", err)
		}
		if err := wb.Set(nodeKey(node.ID), data); err != nil {
			return fmt.Errorf("setting node: %w", err)
		}
		nodes++
	}

	for rel := range g.IterRelationships() {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(rel)
		if err != nil {
			return fmt.Errorf("marshaling relationship: %w", err)
		}
		if err := wb.Set(relKey(rel.ID), data); err != nil {
			return fmt.Errorf("setting relationship: %w", err)
		}
		rels++

		if err := indexRelationship(wb, rel); err != nil {
			return err
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing write batch: %w", err)
	}

	b.nodeCount = nodes
	b.relationshipCount = rels
	return nil
}

// indexRelationship writes the adjacency index entries for a relationship.
func indexRelationship(wb *badger.WriteBatch, rel *graph.GraphRelationship) error {
	outKey := adjacencyPrefix(prefixOutgoing, rel.Source, rel.Type) + rel.ID
	if err := wb.Set([]byte(outKey), []byte(rel.ID)); err != nil {
		return fmt.Errorf("setting outgoing index: %w", err)
	}

	inKey := adjacencyPrefix(prefixIncoming, rel.Target, rel.Type) + rel.ID
	if err := wb.Set([]byte(inKey), []byte(rel.ID)); err != nil {
		return fmt.Errorf("setting incoming index: %w", err)
	}

	return nil
}

// GetNode returns a single node by ID, or nil if not found.
func (b *BadgerBackend) GetNode(ctx context.Context, nodeID string) (*graph.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}

	var node *graph.GraphNode
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		node, err = getNode(txn, nodeID)
		return err
	})
	return node, err
}

// GetNodesByLabel returns all nodes with the given label.
func (b *BadgerBackend) GetNodesByLabel(ctx context.Context, label graph.NodeLabel) ([]*graph.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}

	var nodes []*graph.GraphNode
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = nodeKey(graph.GenerateID(label, ""))
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var node graph.GraphNode
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &node)
			}); err != nil {
				return fmt.Errorf("unmarshaling node: %w", err)
			}
			nodes = append(nodes, &node)
		}
		return nil
	})
	return nodes, err
}

// GetOutgoing returns relationships of relType leaving nodeID.
func (b *BadgerBackend) GetOutgoing(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	return b.scanAdjacency(ctx, adjacencyPrefix(prefixOutgoing, nodeID, relType))
}

// GetIncoming returns relationships of relType arriving at nodeID.
func (b *BadgerBackend) GetIncoming(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	return b.scanAdjacency(ctx, adjacencyPrefix(prefixIncoming, nodeID, relType))
}

func (b *BadgerBackend) scanAdjacency(ctx context.Context, prefix string) ([]*graph.GraphRelationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}

	var rels []*graph.GraphRelationship
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var relID string
			if err := it.Item().Value(func(val []byte) error {
				relID = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("reading rel ID: %w", err)
			}

			relItem, err := txn.Get(relKey(relID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue // index entry without data
			}
			if err != nil {
				return fmt.Errorf("getting relationship: %w", err)
			}

			var rel graph.GraphRelationship
			if err := relItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &rel)
			}); err != nil {
				return fmt.Errorf("unmarshaling relationship: %w", err)
			}
			rels = append(rels, &rel)
		}
		return nil
	})
	return rels, err
}

// Stats implements StorageBackend.
func (b *BadgerBackend) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return Stats{}, ErrClosed
	}

	byLabel := make(map[string]int)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		for _, label := range graph.NodeLabels() {
			if n := countPrefix(txn, opts, string(nodeKey(graph.GenerateID(label, "")))); n > 0 {
				byLabel[string(label)] = n
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Backend:       "badger",
		Nodes:         b.nodeCount,
		Relationships: b.relationshipCount,
		ByLabel:       byLabel,
	}, nil
}

// getNode reads a node inside an open transaction.
func getNode(txn *badger.Txn, nodeID string) (*graph.GraphNode, error) {
	item, err := txn.Get(nodeKey(nodeID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	var node graph.GraphNode
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling node: %w", err)
	}

	return &node, nil
}

// adjacencyPrefix returns the index prefix for a node's relationships of one
// type, or of every type when relType is empty.
func adjacencyPrefix(direction, nodeID string, relType graph.RelType) string {
	if relType == "" {
		return direction + nodeID + ":"
	}
	return fmt.Sprintf("%s%s:%s:", direction, nodeID, relType)
}

// nodeKey returns the BadgerDB key for a node.
func nodeKey(nodeID string) []byte {
	return []byte(prefixNode + nodeID)
}

// relKey returns the BadgerDB key for a relationship.
func relKey(relID string) []byte {
	return []byte(prefixRel + relID)
}
