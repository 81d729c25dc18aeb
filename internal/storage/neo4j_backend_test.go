package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"
	"go.uber.org/zap/zaptest"
)

const testNeo4jPassword = "graphleague-test"

func setupTestNeo4jBackend(t *testing.T) *Neo4jBackend {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping neo4j container test in short mode")
	}

	ctx := context.Background()
	container, err := tcneo4j.Run(ctx, "neo4j:5", tcneo4j.WithAdminPassword(testNeo4jPassword))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.BoltUrl(ctx)
	require.NoError(t, err)

	backend, err := NewNeo4jBackend(ctx, Neo4jConfig{
		URI:      uri,
		User:     "neo4j",
		Password: testNeo4jPassword,
		Database: "neo4j",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func TestNeo4jBackend_Contract(t *testing.T) {
	backend := setupTestNeo4jBackend(t)
	require.NoError(t, backend.BulkLoad(context.Background(), fixtureGraph()))

	testReaderContract(t, backend)
}

func TestNeo4jBackend_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := NewNeo4jBackend(context.Background(), Neo4jConfig{
		URI:      "bolt://127.0.0.1:1",
		User:     "neo4j",
		Password: "nope",
	}, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}
