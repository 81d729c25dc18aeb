package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeLabelConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		label    NodeLabel
		expected string
	}{
		{"Champion", NodeChampion, "champion"},
		{"Archetype", NodeArchetype, "archetype"},
		{"Mechanic", NodeMechanic, "mechanic"},
		{"Role", NodeRole, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, string(tt.label))
		})
	}
	assert.Len(t, NodeLabels(), len(tests))
}

func TestRelTypeEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel    RelType
		source NodeLabel
		target NodeLabel
	}{
		{RelPlaysIn, NodeChampion, NodeRole},
		{RelIsA, NodeChampion, NodeArchetype},
		{RelHasMechanic, NodeChampion, NodeMechanic},
		{RelWeakTo, NodeChampion, NodeMechanic},
		{RelCounters, NodeArchetype, NodeArchetype},
	}

	for _, tt := range tests {
		t.Run(string(tt.rel), func(t *testing.T) {
			t.Parallel()
			source, target, ok := tt.rel.Endpoints()
			assert.True(t, ok)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.target, target)
		})
	}

	_, _, ok := RelType("CALLS").Endpoints()
	assert.False(t, ok)
	assert.Len(t, RelTypes(), len(tests))
}

func TestGenerateID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "champion:Kai'Sa", GenerateID(NodeChampion, "Kai'Sa"))
	assert.Equal(t, "mechanic:Anti-Dash", GenerateID(NodeMechanic, "Anti-Dash"))

	label, name, ok := ParseID("champion:Nunu & Willump")
	assert.True(t, ok)
	assert.Equal(t, NodeChampion, label)
	assert.Equal(t, "Nunu & Willump", name)

	_, _, ok = ParseID("champion:")
	assert.False(t, ok)
	_, _, ok = ParseID("Yasuo")
	assert.False(t, ok)

	assert.Equal(t,
		"archetype:Burst|COUNTERS|archetype:Enchanter",
		RelationshipID(RelCounters, "archetype:Burst", "archetype:Enchanter"))
}
