package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKnowledgeGraph(t *testing.T) {
	t.Parallel()

	g := NewKnowledgeGraph()

	assert.NotNil(t, g)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.RelationshipCount())
}

func TestKnowledgeGraph_AddNode(t *testing.T) {
	t.Parallel()

	t.Run("AddSingle", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph()
		node := &GraphNode{ID: "champion:Yasuo", Label: NodeChampion, Name: "Yasuo"}

		g.AddNode(node)

		assert.Equal(t, 1, g.NodeCount())
		assert.Equal(t, node, g.GetNode("champion:Yasuo"))
	})

	t.Run("AddNamed", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph()

		g.AddNamedNode(NodeChampion, "Ahri", "")
		g.AddNamedNode(NodeChampion, "Braum", "")
		node := g.AddNamedNode(NodeMechanic, "Knock Up", "Knocks enemies airborne.")

		assert.Equal(t, 3, g.NodeCount())
		assert.Equal(t, 2, g.CountNodesByLabel(NodeChampion))
		assert.Equal(t, "mechanic:Knock Up", node.ID)
		assert.Equal(t, "Knocks enemies airborne.", g.GetNode(node.ID).Description)
	})

	t.Run("ReplaceWithDifferentLabel", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph()

		g.AddNode(&GraphNode{ID: "x:Marksman", Label: NodeRole, Name: "Marksman"})
		g.AddNode(&GraphNode{ID: "x:Marksman", Label: NodeArchetype, Name: "Marksman"})

		assert.Equal(t, 1, g.NodeCount())
		assert.Equal(t, 0, g.CountNodesByLabel(NodeRole))
		assert.Equal(t, 1, g.CountNodesByLabel(NodeArchetype))
	})
}

func TestKnowledgeGraph_Relationships(t *testing.T) {
	t.Parallel()

	g := NewKnowledgeGraph()
	yasuo := g.AddNamedNode(NodeChampion, "Yasuo", "")
	mid := g.AddNamedNode(NodeRole, "Mid", "")
	top := g.AddNamedNode(NodeRole, "Top", "")
	block := g.AddNamedNode(NodeMechanic, "Projectile Block", "")

	g.Connect(RelPlaysIn, yasuo.ID, mid.ID, "")
	g.Connect(RelPlaysIn, yasuo.ID, top.ID, "")
	wall := g.Connect(RelHasMechanic, yasuo.ID, block.ID, "Wind Wall blocks projectiles.")

	t.Run("OutgoingByType", func(t *testing.T) {
		assert.Len(t, g.GetOutgoing(yasuo.ID), 3)
		assert.Len(t, g.GetOutgoing(yasuo.ID, RelPlaysIn), 2)
		rels := g.GetOutgoing(yasuo.ID, RelHasMechanic)
		require.Len(t, rels, 1)
		assert.Equal(t, "Wind Wall blocks projectiles.", rels[0].Reason)
	})

	t.Run("IncomingByType", func(t *testing.T) {
		rels := g.GetIncoming(block.ID, RelHasMechanic)
		require.Len(t, rels, 1)
		assert.Equal(t, yasuo.ID, rels[0].Source)
		assert.Empty(t, g.GetIncoming(block.ID, RelWeakTo))
		assert.Nil(t, g.GetIncoming("champion:Nobody"))
	})

	t.Run("ConnectIsIdempotent", func(t *testing.T) {
		before := g.RelationshipCount()
		again := g.Connect(RelHasMechanic, yasuo.ID, block.ID, "Wind Wall blocks projectiles.")
		assert.Equal(t, wall.ID, again.ID)
		assert.Equal(t, before, g.RelationshipCount())
	})

	t.Run("ByType", func(t *testing.T) {
		assert.Len(t, g.GetRelationshipsByType(RelPlaysIn), 2)
		assert.Equal(t, 1, g.CountRelationshipsByType(RelHasMechanic))
		assert.Nil(t, g.GetRelationshipsByType(RelCounters))
	})
}

func TestKnowledgeGraph_RemoveNode(t *testing.T) {
	t.Parallel()

	g := NewKnowledgeGraph()
	ahri := g.AddNamedNode(NodeChampion, "Ahri", "")
	mid := g.AddNamedNode(NodeRole, "Mid", "")
	g.Connect(RelPlaysIn, ahri.ID, mid.ID, "")

	assert.True(t, g.RemoveNode(ahri.ID))
	assert.False(t, g.RemoveNode(ahri.ID))
	assert.Equal(t, 0, g.RelationshipCount())
	assert.Empty(t, g.GetIncoming(mid.ID, RelPlaysIn))
	assert.Equal(t, 0, g.CountNodesByLabel(NodeChampion))
}

func TestKnowledgeGraph_Iterators(t *testing.T) {
	t.Parallel()

	g := NewKnowledgeGraph()
	a := g.AddNamedNode(NodeArchetype, "Burst", "")
	b := g.AddNamedNode(NodeArchetype, "Enchanter", "")
	g.Connect(RelCounters, a.ID, b.ID, "one combo")
	g.Connect(RelCounters, b.ID, a.ID, "shields absorb it")

	nodes := 0
	for range g.IterNodes() {
		nodes++
	}
	rels := 0
	for range g.IterRelationships() {
		rels++
	}

	assert.Equal(t, 2, nodes)
	assert.Equal(t, 2, rels)

	stats := g.Stats()
	assert.Equal(t, 2, stats["nodes"])
	assert.Equal(t, 2, stats["relationships"])
	assert.Equal(t, 2, stats["archetype"])
}

func TestKnowledgeGraph_Validate(t *testing.T) {
	t.Parallel()

	build := func() (*KnowledgeGraph, *GraphNode) {
		g := NewKnowledgeGraph()
		champ := g.AddNamedNode(NodeChampion, "Braum", "")
		warden := g.AddNamedNode(NodeArchetype, "Warden", "")
		support := g.AddNamedNode(NodeRole, "Support", "")
		g.Connect(RelIsA, champ.ID, warden.ID, "")
		g.Connect(RelPlaysIn, champ.ID, support.ID, "")
		return g, champ
	}

	t.Run("ValidGraph", func(t *testing.T) {
		g, _ := build()
		assert.NoError(t, g.Validate())
	})

	t.Run("MissingArchetype", func(t *testing.T) {
		g, _ := build()
		g.AddNamedNode(NodeChampion, "Ahri", "")

		err := g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvariant)
		assert.Contains(t, err.Error(), "champion:Ahri has 0 IS_A edges")
	})

	t.Run("TwoArchetypes", func(t *testing.T) {
		g, champ := build()
		vanguard := g.AddNamedNode(NodeArchetype, "Vanguard", "")
		g.Connect(RelIsA, champ.ID, vanguard.ID, "")

		err := g.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has 2 IS_A edges")
	})

	t.Run("UnknownVocabulary", func(t *testing.T) {
		g, champ := build()
		flash := g.AddNamedNode(NodeMechanic, "Flash", "")
		g.Connect(RelHasMechanic, champ.ID, flash.ID, "")

		err := g.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid mechanic "Flash"`)
	})

	t.Run("WrongEndpoints", func(t *testing.T) {
		g, champ := build()
		g.Connect(RelCounters, champ.ID, "archetype:Warden", "")

		err := g.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COUNTERS connects champion to archetype")
	})

	t.Run("DanglingTarget", func(t *testing.T) {
		g, champ := build()
		g.Connect(RelPlaysIn, champ.ID, "role:Mid", "")

		err := g.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing target node role:Mid")
	})
}
