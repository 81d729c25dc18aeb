package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Benny93/graphleague-go/internal/vocab"
)

// ErrSchema is returned when generator output does not match OutputSchema.
var ErrSchema = errors.New("intent output does not match schema")

// Wire is the flat JSON form of an intent exchanged with generators.
type Wire struct {
	IntentType      string `json:"intent_type"`
	EnemyChampion   string `json:"enemy_champion,omitempty"`
	MechanicConcept string `json:"mechanic_concept,omitempty"`
	EnemyArchetype  string `json:"enemy_archetype,omitempty"`
	MyPosition      string `json:"my_position,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// OutputSchema returns the closed schema generators must answer with.
func OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"intent_type"},
		Properties: map[string]*jsonschema.Schema{
			"intent_type": {
				Type:        "string",
				Enum:        enum(vocab.IntentKinds()),
				Description: "counter_pick for a named enemy champion, mechanic_search for a mechanic, archetype_counter for an enemy archetype, unknown otherwise.",
			},
			"enemy_champion": {
				Type:        "string",
				Description: "Champion the user wants to beat. Required for counter_pick.",
			},
			"mechanic_concept": {
				Type:        "string",
				Enum:        enum(vocab.Mechanics()),
				Description: "Mechanic the user is looking for. Required for mechanic_search.",
			},
			"enemy_archetype": {
				Type:        "string",
				Enum:        enum(vocab.Archetypes()),
				Description: "Archetype the user wants to beat. Required for archetype_counter.",
			},
			"my_position": {
				Type:        "string",
				Enum:        enum(vocab.Roles()),
				Description: "Lane the user plays. Omit when no lane is mentioned.",
			},
			"reason": {
				Type:        "string",
				Description: "Why the question cannot be answered. Required for unknown.",
			},
		},
	}
}

func enum[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return OutputSchema().Resolve(nil)
})

var intentTypeAliases = map[string]vocab.IntentKind{
	"counter_pick":       vocab.IntentCounterPick,
	"counterpick":        vocab.IntentCounterPick,
	"mechanic_search":    vocab.IntentMechanicSearch,
	"archetype_counter":  vocab.IntentArchetypeCounters,
	"archetype_counters": vocab.IntentArchetypeCounters,
	"unknown":            vocab.IntentUnknown,
	"unknown_intent":     vocab.IntentUnknown,
}

// Parse decodes generator output into an Intent.
//
// It accepts the flat object, the same object under a "choice" key, and
// either wrapped in a Markdown code fence. Null and empty fields are dropped
// and vocabulary fields are normalized ("ADC" becomes Bot, "anti-heal"
// becomes Grievous Wounds) before the result is checked against
// OutputSchema and the validating constructors.
func Parse(raw string) (Intent, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(stripFence(raw)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if choice, ok := doc["choice"].(map[string]any); ok {
		doc = choice
	}

	for k, v := range doc {
		if s, ok := v.(string); v == nil || (ok && strings.TrimSpace(s) == "") {
			delete(doc, k)
		}
	}
	normalizeField(doc, "intent_type", func(s string) (string, error) {
		if kind, ok := intentTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
			return string(kind), nil
		}
		return "", vocab.ErrInvalid
	})
	normalizeField(doc, "mechanic_concept", func(s string) (string, error) {
		m, err := vocab.NormalizeMechanic(s)
		return string(m), err
	})
	normalizeField(doc, "enemy_archetype", func(s string) (string, error) {
		a, err := vocab.NormalizeArchetype(s)
		return string(a), err
	})
	normalizeField(doc, "my_position", func(s string) (string, error) {
		r, err := vocab.NormalizeRole(s)
		return string(r), err
	})

	resolved, err := resolvedSchema()
	if err != nil {
		return nil, fmt.Errorf("resolving intent schema: %w", err)
	}
	if err := resolved.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	var w Wire
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return w.Intent()
}

// normalizeField rewrites a string field in place. Values that fail to
// normalize are left as they are for schema validation to reject.
func normalizeField(doc map[string]any, field string, fn func(string) (string, error)) {
	s, ok := doc[field].(string)
	if !ok {
		return
	}
	if out, err := fn(s); err == nil {
		doc[field] = out
	}
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Intent builds the typed intent for w.
func (w Wire) Intent() (Intent, error) {
	kind, err := vocab.ParseIntentKind(w.IntentType)
	if err != nil {
		return nil, err
	}
	lane := vocab.Role(w.MyPosition)

	var in Intent
	switch kind {
	case vocab.IntentCounterPick:
		in, err = NewCounterPick(w.EnemyChampion, lane)
	case vocab.IntentMechanicSearch:
		in, err = NewMechanicSearch(vocab.Mechanic(w.MechanicConcept), lane)
	case vocab.IntentArchetypeCounters:
		in, err = NewArchetypeCounters(vocab.Archetype(w.EnemyArchetype), lane)
	default:
		in = NewUnknown(w.Reason)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// ToWire returns the wire form of in.
func ToWire(in Intent) Wire {
	switch v := in.(type) {
	case CounterPick:
		return Wire{IntentType: string(v.Kind()), EnemyChampion: v.EnemyChampion, MyPosition: string(v.MyPosition)}
	case MechanicSearch:
		return Wire{IntentType: string(v.Kind()), MechanicConcept: string(v.Mechanic), MyPosition: string(v.MyPosition)}
	case ArchetypeCounters:
		return Wire{IntentType: string(v.Kind()), EnemyArchetype: string(v.EnemyArchetype), MyPosition: string(v.MyPosition)}
	case Unknown:
		return Wire{IntentType: string(v.Kind()), Reason: v.Reason}
	default:
		return Wire{IntentType: string(vocab.IntentUnknown), Reason: ReasonSystemError}
	}
}
