package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendNeo4j  = "neo4j"
)

// Backends returns every backend name accepted by Open.
func Backends() []string {
	return []string{BackendMemory, BackendBadger, BackendNeo4j}
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string // badger directory
	ReadOnly bool
	Neo4j    Neo4jConfig
	Logger   *zap.Logger
}

// Open acquires the selected backend. The caller owns the returned handle and
// must Close it on shutdown.
func Open(ctx context.Context, opts Options) (StorageBackend, error) {
	switch opts.Backend {
	case "", BackendMemory:
		backend := NewMemoryBackend()
		if err := backend.Initialize(opts.Path, opts.ReadOnly); err != nil {
			return nil, err
		}
		return backend, nil
	case BackendBadger:
		backend := NewBadgerBackend()
		if err := backend.Initialize(opts.Path, opts.ReadOnly); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return backend, nil
	case BackendNeo4j:
		return NewNeo4jBackend(ctx, opts.Neo4j, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
