package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/query"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

const fixture = "testdata/champions.json"

func vocabularySize() int {
	return len(vocab.Roles()) + len(vocab.Mechanics()) + len(vocab.Archetypes())
}

func TestChampionRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("NormalizesSynonyms", func(t *testing.T) {
		c, err := ChampionRecord{
			Name:      " Draven ",
			Archetype: "marksman",
			Positions: []string{"adc", "Bot", "bottom"},
			Mechanics: []MechanicEntry{
				{Mechanic: "antiheal", Explanation: " Axes apply it. "},
				{Mechanic: "Grievous Wounds", Explanation: "again"},
			},
			Weaknesses: []WeaknessEntry{{Mechanic: "blind", Reason: "Auto attack reliant."}},
		}.Validate()

		require.NoError(t, err)
		assert.Equal(t, Champion{
			Name:       "Draven",
			Archetype:  vocab.ArchetypeMarksman,
			Positions:  []vocab.Role{vocab.RoleBot},
			Mechanics:  []ChampionMechanic{{vocab.MechanicGrievousWounds, "Axes apply it."}},
			Weaknesses: []ChampionWeakness{{vocab.MechanicAntiAutoAttack, "Auto attack reliant."}},
		}, c)
	})

	t.Run("ReportsEveryProblem", func(t *testing.T) {
		_, err := ChampionRecord{
			Archetype: "Wizard",
			Positions: []string{"Roam"},
			Mechanics: []MechanicEntry{{Mechanic: "Teleport"}},
		}.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, vocab.ErrInvalid)
		assert.Contains(t, err.Error(), "missing name")
		assert.Contains(t, err.Error(), "Wizard")
		assert.Contains(t, err.Error(), "Roam")
		assert.Contains(t, err.Error(), "Teleport")
	})

	t.Run("RequiresPosition", func(t *testing.T) {
		_, err := ChampionRecord{Name: "Bard", Archetype: "Catcher"}.Validate()
		assert.ErrorContains(t, err, "no positions")
	})
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel()

	t.Run("Array", func(t *testing.T) {
		records, err := DecodeRecords([]byte(`[{"name":"Braum","archetype":"Warden","positions":["Support"]}]`))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Braum", records[0].Name)
	})

	t.Run("Object", func(t *testing.T) {
		records, err := DecodeRecords([]byte(` {"champions":[{"name":"Braum"},{"name":"Leona"}]}`))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		records, err := DecodeRecords([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeRecords([]byte(`[{"name":`))
		assert.ErrorContains(t, err, "decoding records")
	})
}

func TestBuildGraph(t *testing.T) {
	t.Parallel()

	entries, err := WalkData(fixture)
	require.NoError(t, err)

	t.Run("LenientSkipsInvalid", func(t *testing.T) {
		g, result, err := BuildGraph(entries, false)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Files)
		assert.Equal(t, 3, result.Champions)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "Teemo", result.Issues[0].Champion)
		assert.ErrorIs(t, result.Issues[0], vocab.ErrInvalid)

		assert.Equal(t, vocabularySize()+3, result.Nodes)
		assert.Equal(t, g.NodeCount(), result.Nodes)
		assert.Equal(t, len(vocab.ArchetypeCounterWeb()), g.CountRelationshipsByType(graph.RelCounters))
		assert.Equal(t, len(vocab.ArchetypeCounterWeb())+16, result.Relationships)
		assert.NoError(t, g.Validate())
	})

	t.Run("DerivesWeaknesses", func(t *testing.T) {
		g, result, err := BuildGraph(entries, false)
		require.NoError(t, err)

		// Yasuo gains Anti-Dash and Varus Projectile Block; Soraka already lists Grievous Wounds.
		assert.Equal(t, 2, result.DerivedWeaknesses)

		varus := graph.GenerateID(graph.NodeChampion, "Varus")
		rels := g.GetOutgoing(varus, graph.RelWeakTo)
		require.Len(t, rels, 1)
		assert.Equal(t, graph.GenerateID(graph.NodeMechanic, string(vocab.MechanicProjectileBlock)), rels[0].Target)
		assert.Equal(t, "Key skillshots can be blocked or destroyed.", rels[0].Reason)

		soraka := g.GetOutgoing(graph.GenerateID(graph.NodeChampion, "Soraka"), graph.RelWeakTo)
		require.Len(t, soraka, 1)
		assert.Equal(t, "Her kit is built around healing.", soraka[0].Reason)
	})

	t.Run("NormalizesPositions", func(t *testing.T) {
		g, _, err := BuildGraph(entries, false)
		require.NoError(t, err)

		rels := g.GetOutgoing(graph.GenerateID(graph.NodeChampion, "Varus"), graph.RelPlaysIn)
		require.Len(t, rels, 1)
		assert.Equal(t, graph.GenerateID(graph.NodeRole, string(vocab.RoleBot)), rels[0].Target)
	})

	t.Run("StrictFails", func(t *testing.T) {
		_, _, err := BuildGraph(entries, true)

		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, "Teemo", recErr.Champion)
		assert.Equal(t, "champions.json", recErr.File)
	})

	t.Run("Duplicates", func(t *testing.T) {
		dup := FileEntry{RelPath: "extra.json", Content: []byte(`[{"name":"yasuo","archetype":"Burst","positions":["Mid"]}]`)}
		_, result, err := BuildGraph(append(entries[:1:1], dup), false)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Champions)
		assert.Equal(t, 2, result.Skipped)
		assert.ErrorContains(t, result.Issues[1], "duplicate of the record in champions.json")
	})

	t.Run("MalformedFileSkipped", func(t *testing.T) {
		bad := FileEntry{RelPath: "bad.json", Content: []byte("{")}
		_, result, err := BuildGraph(append(entries[:1:1], bad), false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Files)
		assert.Equal(t, "bad.json", result.Issues[1].File)
	})

	t.Run("NoChampions", func(t *testing.T) {
		_, _, err := BuildGraph(nil, false)
		assert.ErrorIs(t, err, ErrNoChampions)
	})
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	t.Run("LoadsStoreAndAnswersQueries", func(t *testing.T) {
		store := storage.NewMemoryBackend()
		defer store.Close()

		var phases []string
		_, result, err := RunPipeline(t.Context(), fixture, store, Options{
			Progress: func(phase string, progress float64) {
				if progress == 1.0 {
					phases = append(phases, phase)
				}
			},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"Walking files", "Building graph", "Building graph", "Loading store"}, phases)
		assert.Equal(t, 3, result.Champions)
		assert.Positive(t, result.DurationSecs)

		stats, err := store.Stats(t.Context())
		require.NoError(t, err)
		assert.Equal(t, result.Nodes, stats.Nodes)

		picks, err := query.NewEngine(store, query.DefaultConfig(), nil, nil).CounterPicks(t.Context(), "varus", "", 5)
		require.NoError(t, err)
		require.Len(t, picks, 1)
		assert.Equal(t, query.CounterPick{
			Champion: "Yasuo",
			Score:    3,
			Offense:  3,
			Defense:  0,
			Pros:     []string{"Divers gap close onto immobile poke mages.", "Wind Wall destroys enemy projectiles."},
			Cons:     []string{},
		}, picks[0])
	})

	t.Run("Badger", func(t *testing.T) {
		store := storage.NewBadgerBackend()
		require.NoError(t, store.Initialize(t.TempDir(), false))
		defer store.Close()

		_, result, err := RunPipeline(t.Context(), fixture, store, Options{})
		require.NoError(t, err)

		node, err := store.GetNode(t.Context(), graph.GenerateID(graph.NodeChampion, "Soraka"))
		require.NoError(t, err)
		require.NotNil(t, node)
		assert.Equal(t, "Soraka", node.Name)

		stats, err := store.Stats(t.Context())
		require.NoError(t, err)
		assert.Equal(t, result.Relationships, stats.Relationships)
	})

	t.Run("FailedLoadKeepsStore", func(t *testing.T) {
		store := storage.NewMemoryBackend()
		defer store.Close()
		_, _, err := RunPipeline(t.Context(), fixture, store, Options{})
		require.NoError(t, err)

		empty := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
		_, _, err = RunPipeline(t.Context(), empty, store, Options{})
		require.ErrorIs(t, err, ErrNoChampions)

		node, err := store.GetNode(t.Context(), graph.GenerateID(graph.NodeChampion, "Yasuo"))
		require.NoError(t, err)
		assert.NotNil(t, node)
	})

	t.Run("ClosedStore", func(t *testing.T) {
		store := storage.NewMemoryBackend()
		require.NoError(t, store.Close())

		_, _, err := RunPipeline(t.Context(), fixture, store, Options{})
		assert.ErrorIs(t, err, storage.ErrClosed)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, _, err := RunPipeline(ctx, fixture, storage.NewMemoryBackend(), Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, _, err := RunPipeline(t.Context(), "testdata/absent", storage.NewMemoryBackend(), Options{})
		assert.ErrorContains(t, err, "walking data")
	})
}
