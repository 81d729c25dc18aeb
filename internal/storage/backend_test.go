package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/graphleague-go/internal/graph"
)

// fixtureGraph is a small two-champion graph shared by every backend test:
// 10 nodes and 10 relationships.
func fixtureGraph() *graph.KnowledgeGraph {
	g := graph.NewKnowledgeGraph()

	yasuo := g.AddNamedNode(graph.NodeChampion, "Yasuo", "")
	varus := g.AddNamedNode(graph.NodeChampion, "Varus", "")
	diver := g.AddNamedNode(graph.NodeArchetype, "Diver", "")
	artillery := g.AddNamedNode(graph.NodeArchetype, "Artillery", "")
	block := g.AddNamedNode(graph.NodeMechanic, "Projectile Block", "Stops projectiles.")
	grievous := g.AddNamedNode(graph.NodeMechanic, "Grievous Wounds", "")
	reliant := g.AddNamedNode(graph.NodeMechanic, "Projectile Reliant", "")
	mid := g.AddNamedNode(graph.NodeRole, "Mid", "")
	top := g.AddNamedNode(graph.NodeRole, "Top", "")
	bot := g.AddNamedNode(graph.NodeRole, "Bot", "")

	g.Connect(graph.RelPlaysIn, yasuo.ID, mid.ID, "")
	g.Connect(graph.RelPlaysIn, yasuo.ID, top.ID, "")
	g.Connect(graph.RelIsA, yasuo.ID, diver.ID, "")
	g.Connect(graph.RelHasMechanic, yasuo.ID, block.ID, "Wind Wall blocks all enemy projectiles.")

	g.Connect(graph.RelPlaysIn, varus.ID, bot.ID, "")
	g.Connect(graph.RelIsA, varus.ID, artillery.ID, "")
	g.Connect(graph.RelHasMechanic, varus.ID, grievous.ID, "Blighted Quiver applies Grievous Wounds.")
	g.Connect(graph.RelHasMechanic, varus.ID, reliant.ID, "Piercing Arrow is a projectile.")
	g.Connect(graph.RelWeakTo, varus.ID, block.ID, "His arrows can be blocked.")

	g.Connect(graph.RelCounters, diver.ID, artillery.ID, "Divers close the gap on immobile mages.")

	return g
}

func relTargets(rels []*graph.GraphRelationship) []string {
	out := make([]string, 0, len(rels))
	for _, rel := range rels {
		out = append(out, rel.Target)
	}
	sort.Strings(out)
	return out
}

// testReaderContract checks the traversal primitives on a backend loaded with
// fixtureGraph.
func testReaderContract(t *testing.T, backend StorageBackend) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetNode", func(t *testing.T) {
		node, err := backend.GetNode(ctx, "mechanic:Projectile Block")
		require.NoError(t, err)
		require.NotNil(t, node)
		assert.Equal(t, graph.NodeMechanic, node.Label)
		assert.Equal(t, "Projectile Block", node.Name)
		assert.Equal(t, "Stops projectiles.", node.Description)
	})

	t.Run("GetNodeMissing", func(t *testing.T) {
		node, err := backend.GetNode(ctx, "champion:Teemo")
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("GetNodesByLabel", func(t *testing.T) {
		nodes, err := backend.GetNodesByLabel(ctx, graph.NodeChampion)
		require.NoError(t, err)
		names := make([]string, 0, len(nodes))
		for _, n := range nodes {
			names = append(names, n.Name)
		}
		assert.ElementsMatch(t, []string{"Varus", "Yasuo"}, names)

		roles, err := backend.GetNodesByLabel(ctx, graph.NodeRole)
		require.NoError(t, err)
		assert.Len(t, roles, 3)
	})

	t.Run("GetOutgoingByType", func(t *testing.T) {
		rels, err := backend.GetOutgoing(ctx, "champion:Yasuo", graph.RelPlaysIn)
		require.NoError(t, err)
		assert.Equal(t, []string{"role:Mid", "role:Top"}, relTargets(rels))

		rels, err = backend.GetOutgoing(ctx, "champion:Yasuo", graph.RelHasMechanic)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "Wind Wall blocks all enemy projectiles.", rels[0].Reason)
		assert.Equal(t, "champion:Yasuo", rels[0].Source)
	})

	t.Run("GetOutgoingAllTypes", func(t *testing.T) {
		rels, err := backend.GetOutgoing(ctx, "champion:Varus", "")
		require.NoError(t, err)
		assert.Len(t, rels, 5)
	})

	t.Run("GetIncoming", func(t *testing.T) {
		rels, err := backend.GetIncoming(ctx, "mechanic:Projectile Block", graph.RelWeakTo)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "champion:Varus", rels[0].Source)
		assert.Equal(t, "His arrows can be blocked.", rels[0].Reason)

		rels, err = backend.GetIncoming(ctx, "archetype:Artillery", graph.RelCounters)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "archetype:Diver", rels[0].Source)
	})

	t.Run("NoEdges", func(t *testing.T) {
		rels, err := backend.GetIncoming(ctx, "archetype:Diver", graph.RelCounters)
		require.NoError(t, err)
		assert.Empty(t, rels)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := backend.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, stats.Nodes)
		assert.Equal(t, 10, stats.Relationships)
		assert.Equal(t, 2, stats.ByLabel["champion"])
		assert.Equal(t, 3, stats.ByLabel["mechanic"])
	})
}

func TestMemoryBackend_Contract(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	require.NoError(t, backend.BulkLoad(context.Background(), fixtureGraph()))
	defer backend.Close()

	testReaderContract(t, backend)
}

func TestMemoryBackend_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("ReadOnlyRejectsLoad", func(t *testing.T) {
		t.Parallel()
		backend := NewMemoryBackend()
		require.NoError(t, backend.Initialize("", true))

		err := backend.BulkLoad(context.Background(), fixtureGraph())
		assert.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("ClosedBackend", func(t *testing.T) {
		t.Parallel()
		backend := NewMemoryBackendFrom(fixtureGraph())
		require.NoError(t, backend.Close())

		_, err := backend.GetNode(context.Background(), "champion:Yasuo")
		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, backend.Graph())
	})

	t.Run("CanceledContext", func(t *testing.T) {
		t.Parallel()
		backend := NewMemoryBackendFrom(fixtureGraph())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := backend.GetOutgoing(ctx, "champion:Yasuo", graph.RelPlaysIn)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("BulkLoadReplaces", func(t *testing.T) {
		t.Parallel()
		backend := NewMemoryBackendFrom(fixtureGraph())

		next := graph.NewKnowledgeGraph()
		next.AddNamedNode(graph.NodeRole, "Support", "")
		require.NoError(t, backend.BulkLoad(context.Background(), next))

		stats, err := backend.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Nodes)
		assert.Equal(t, 0, stats.Relationships)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("DefaultsToMemory", func(t *testing.T) {
		t.Parallel()
		backend, err := Open(context.Background(), Options{})
		require.NoError(t, err)
		defer backend.Close()

		assert.IsType(t, &MemoryBackend{}, backend)
	})

	t.Run("Badger", func(t *testing.T) {
		t.Parallel()
		backend, err := Open(context.Background(), Options{Backend: BackendBadger, Path: t.TempDir()})
		require.NoError(t, err)
		defer backend.Close()

		assert.IsType(t, &BadgerBackend{}, backend)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		t.Parallel()
		_, err := Open(context.Background(), Options{Backend: "sqlite"})
		assert.ErrorContains(t, err, `unknown storage backend "sqlite"`)
	})
}
