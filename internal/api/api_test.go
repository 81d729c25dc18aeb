package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/graphleague-go/internal/coach"
	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/metrics"
	"github.com/Benny93/graphleague-go/internal/query"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

func testGraph() *graph.KnowledgeGraph {
	g := graph.NewKnowledgeGraph()
	for _, r := range vocab.Roles() {
		g.AddNamedNode(graph.NodeRole, string(r), "")
	}
	for _, a := range vocab.Archetypes() {
		g.AddNamedNode(graph.NodeArchetype, string(a), "")
	}
	for _, m := range vocab.Mechanics() {
		g.AddNamedNode(graph.NodeMechanic, string(m), "")
	}
	id := graph.GenerateID

	champion := func(name string, a vocab.Archetype, lane vocab.Role) string {
		n := g.AddNamedNode(graph.NodeChampion, name, "")
		g.Connect(graph.RelIsA, n.ID, id(graph.NodeArchetype, string(a)), "")
		g.Connect(graph.RelPlaysIn, n.ID, id(graph.NodeRole, string(lane)), "")
		return n.ID
	}
	yasuo := champion("Yasuo", vocab.ArchetypeDiver, vocab.RoleMid)
	xerath := champion("Xerath", vocab.ArchetypeArtillery, vocab.RoleMid)
	malphite := champion("Malphite", vocab.ArchetypeVanguard, vocab.RoleTop)

	block := id(graph.NodeMechanic, string(vocab.MechanicProjectileBlock))
	g.Connect(graph.RelHasMechanic, yasuo, block, "Wind Wall blocks projectiles.")
	g.Connect(graph.RelWeakTo, xerath, block, "His orbs are projectiles.")
	g.Connect(graph.RelHasMechanic, malphite, id(graph.NodeMechanic, string(vocab.MechanicKnockUp)), "Unstoppable Force knocks up.")

	g.Connect(graph.RelCounters, id(graph.NodeArchetype, string(vocab.ArchetypeDiver)), id(graph.NodeArchetype, string(vocab.ArchetypeArtillery)), "Divers reach immobile mages.")
	g.Connect(graph.RelCounters, id(graph.NodeArchetype, string(vocab.ArchetypeVanguard)), id(graph.NodeArchetype, string(vocab.ArchetypeArtillery)), "Engage closes the gap.")
	return g
}

func newServer(t *testing.T, store storage.StorageBackend) *httptest.Server {
	t.Helper()
	engine := query.NewEngine(store, query.DefaultConfig(), nil, nil)
	classifier := intent.NewClassifier(intent.NewKeywordGenerator([]string{"Yasuo", "Xerath", "Malphite"}), intent.DefaultClassifierConfig(), nil, nil)
	svc := coach.NewService(classifier, dispatch.New(engine, 5), nil, nil)

	ts := httptest.NewServer(NewRouter(svc, engine, Options{Metrics: metrics.New()}))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func post(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	ts := newServer(t, storage.NewMemoryBackendFrom(testGraph()))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_Queries(t *testing.T) {
	t.Parallel()

	ts := newServer(t, storage.NewMemoryBackendFrom(testGraph()))

	t.Run("Counters", func(t *testing.T) {
		var answer dispatch.Answer
		status := get(t, ts.URL+"/api/v1/counters/xerath?limit=1", &answer)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Countering xerath in Any Lane", answer.Context)
		require.Len(t, answer.CounterPicks, 1)
		assert.Equal(t, "Yasuo", answer.CounterPicks[0].Champion)
		assert.Equal(t, 3, answer.CounterPicks[0].Score)
	})

	t.Run("CountersLaneSynonym", func(t *testing.T) {
		var answer dispatch.Answer
		status := get(t, ts.URL+"/api/v1/counters/Xerath?lane=toplane", &answer)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Countering Xerath in Top", answer.Context)
		require.Len(t, answer.CounterPicks, 1)
		assert.Equal(t, "Malphite", answer.CounterPicks[0].Champion)
	})

	t.Run("Mechanics", func(t *testing.T) {
		var answer dispatch.Answer
		status := get(t, ts.URL+"/api/v1/mechanics/windwall", &answer)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Champions with Projectile Block in Any Lane", answer.Context)
		assert.Equal(t, []query.MechanicHolder{{Champion: "Yasuo", Explanation: "Wind Wall blocks projectiles."}}, answer.MechanicHolders)
	})

	t.Run("MechanicsEscapedName", func(t *testing.T) {
		var answer dispatch.Answer
		status := get(t, ts.URL+"/api/v1/mechanics/Knock%20Up?lane=top", &answer)

		require.Equal(t, http.StatusOK, status)
		require.Len(t, answer.MechanicHolders, 1)
		assert.Equal(t, "Malphite", answer.MechanicHolders[0].Champion)
	})

	t.Run("ArchetypeCounters", func(t *testing.T) {
		var answer dispatch.Answer
		status := get(t, ts.URL+"/api/v1/archetypes/artillery/counters?lane=mid", &answer)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Champions that counter Artillerys in Mid", answer.Context)
		require.Len(t, answer.ArchetypeCounters, 1)
		assert.Equal(t, query.ArchetypeCounter{Champion: "Yasuo", Archetype: "Diver", Reason: "Divers reach immobile mages."}, answer.ArchetypeCounters[0])
	})

	t.Run("Vocabulary", func(t *testing.T) {
		var doc vocab.Document
		status := get(t, ts.URL+"/api/v1/vocabulary", &doc)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, vocab.Roles(), doc.Roles)
		assert.Len(t, doc.Mechanics, len(vocab.Mechanics()))
	})

	t.Run("Metrics", func(t *testing.T) {
		get(t, ts.URL+"/api/v1/counters/Xerath", nil)

		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "go_goroutines")
	})
}

func TestRouter_BadRequests(t *testing.T) {
	t.Parallel()

	ts := newServer(t, storage.NewMemoryBackendFrom(testGraph()))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"UnknownLane", "/api/v1/counters/Xerath?lane=roam", `invalid role "roam"`},
		{"BadLimit", "/api/v1/counters/Xerath?limit=-2", `invalid limit "-2"`},
		{"UnknownMechanic", "/api/v1/mechanics/teleport", "invalid mechanic"},
		{"UnknownArchetype", "/api/v1/archetypes/wizard/counters", "invalid archetype"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			status := get(t, ts.URL+tt.path, &resp)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, resp.Error, tt.want)
		})
	}

	t.Run("MalformedBody", func(t *testing.T) {
		var resp ErrorResponse
		status := post(t, ts.URL+"/api/v1/ask", "{", &resp)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRouter_Ask(t *testing.T) {
	t.Parallel()

	ts := newServer(t, storage.NewMemoryBackendFrom(testGraph()))

	t.Run("Answerable", func(t *testing.T) {
		var reply coach.Reply
		status := post(t, ts.URL+"/api/v1/ask", `{"question":"who counters xerath mid"}`, &reply)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "counter_pick", reply.Intent.IntentType)
		assert.NotEmpty(t, reply.RequestID)
		assert.Contains(t, reply.Text, "1. Yasuo")
	})

	t.Run("OutOfDomain", func(t *testing.T) {
		var reply coach.Reply
		status := post(t, ts.URL+"/api/v1/ask", `{"question":"what skins does Yasuo have"}`, &reply)

		require.Equal(t, http.StatusOK, status)
		assert.True(t, reply.Answer.Unanswerable)
		assert.True(t, strings.HasPrefix(reply.Text, "I can't answer that right now."))
	})

	t.Run("Classify", func(t *testing.T) {
		var wire intent.Wire
		status := post(t, ts.URL+"/api/v1/classify", `{"question":"who has anti heal"}`, &wire)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "mechanic_search", wire.IntentType)
		assert.Equal(t, "Grievous Wounds", wire.MechanicConcept)
	})
}

func TestRouter_StoreUnavailable(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryBackendFrom(testGraph())
	require.NoError(t, store.Close())
	ts := newServer(t, store)

	var resp ErrorResponse
	status := get(t, ts.URL+"/api/v1/mechanics/windwall", &resp)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, resp.Error, "graph store unavailable")

	status = post(t, ts.URL+"/api/v1/ask", `{"question":"who counters xerath"}`, &resp)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
