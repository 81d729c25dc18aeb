package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

var roster = []string{"Aatrox", "Yasuo", "Kai'Sa", "Lee Sin", "Miss Fortune", "Zed"}

func TestKeywordGenerator_Route(t *testing.T) {
	t.Parallel()

	gen := NewKeywordGenerator(roster)

	tests := []struct {
		text string
		want Intent
	}{
		{"Who counters Aatrox top?", CounterPick{EnemyChampion: "Aatrox", MyPosition: vocab.RoleTop}},
		{"Which mid laners have anti-heal?", MechanicSearch{Mechanic: vocab.MechanicGrievousWounds, MyPosition: vocab.RoleMid}},
		{"Picks against Juggernauts", ArchetypeCounters{EnemyArchetype: vocab.ArchetypeJuggernaut}},
		{"best adc into kaisa", CounterPick{EnemyChampion: "Kai'Sa", MyPosition: vocab.RoleBot}},
		{"How do I beat Yasuo's wind wall as a support", CounterPick{EnemyChampion: "Yasuo", MyPosition: vocab.RoleSupport}},
		{"counter lee sin jungle", CounterPick{EnemyChampion: "Lee Sin", MyPosition: vocab.RoleJungle}},
		{"Who counters assassins in mid?", ArchetypeCounters{EnemyArchetype: vocab.ArchetypeBurst, MyPosition: vocab.RoleMid}},
		{"Who is good against marksmen as support", ArchetypeCounters{EnemyArchetype: vocab.ArchetypeMarksman, MyPosition: vocab.RoleSupport}},
		{"What can I play to stop dashes?", MechanicSearch{Mechanic: vocab.MechanicAntiDash}},
		{"How do I counter healing as adc", MechanicSearch{Mechanic: vocab.MechanicGrievousWounds, MyPosition: vocab.RoleBot}},
		{"Who has a wind wall", MechanicSearch{Mechanic: vocab.MechanicProjectileBlock}},
		{"supports with knock ups", MechanicSearch{Mechanic: vocab.MechanicKnockUp, MyPosition: vocab.RoleSupport}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			raw, err := gen.Generate(context.Background(), llm.Request{Input: tt.text})
			require.NoError(t, err)

			got, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordGenerator_Unknown(t *testing.T) {
	t.Parallel()

	gen := NewKeywordGenerator(roster)

	for _, text := range []string{
		"Tell me about skin X",
		"What is Zed's lore?",
		"What items should I build on Aatrox?",
		"hello there",
	} {
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			raw, err := gen.Generate(context.Background(), llm.Request{Input: text})
			require.NoError(t, err)

			got, err := Parse(raw)
			require.NoError(t, err)
			unknown, ok := got.(Unknown)
			require.True(t, ok, "got %#v", got)
			assert.NotEmpty(t, unknown.Reason)
		})
	}
}

func TestKeywordGenerator_WithClassifier(t *testing.T) {
	t.Parallel()

	c := NewClassifier(NewKeywordGenerator(roster), testConfig(), nil, nil)

	assert.Equal(t,
		CounterPick{EnemyChampion: "Zed", MyPosition: vocab.RoleMid},
		c.Classify(context.Background(), "I'm mid, who beats Zed?"))
	assert.IsType(t, Unknown{}, c.Classify(context.Background(), "Tell me about skin X"))
}

func TestKeywordGenerator_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewKeywordGenerator(nil).Generate(ctx, llm.Request{Input: "Who counters Zed"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"kaisa"}, tokenize("Kai'Sa"))
	assert.Equal(t, []string{"yasuo", "wind", "wall"}, tokenize("Yasuo's wind-wall"))
	assert.Equal(t, []string{"dr", "mundo"}, tokenize("Dr. Mundo"))
}
