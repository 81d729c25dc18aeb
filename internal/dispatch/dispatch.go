// Package dispatch routes a classified intent to the matching query engine
// operation and describes what was searched for.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/query"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// ErrUnhandledIntent is returned for an Intent implementation the dispatcher
// has no arm for.
var ErrUnhandledIntent = errors.New("unhandled intent")

// DefaultCounterLimit is the number of counter picks requested per question.
const DefaultCounterLimit = 5

// Querier is the part of the query engine the dispatcher calls.
type Querier interface {
	CounterPicks(ctx context.Context, enemy string, lane vocab.Role, limit int) ([]query.CounterPick, error)
	MechanicHolders(ctx context.Context, mechanic vocab.Mechanic, lane vocab.Role) ([]query.MechanicHolder, error)
	ArchetypeCounters(ctx context.Context, target vocab.Archetype, lane vocab.Role) ([]query.ArchetypeCounter, error)
}

// Answer is the result of one dispatched intent. Exactly one result slice is
// set for answerable intents; Unanswerable answers carry only the Reason.
type Answer struct {
	Kind         vocab.IntentKind `json:"kind"`
	Context      string           `json:"context,omitempty"`
	Unanswerable bool             `json:"unanswerable"`
	Reason       string           `json:"reason,omitempty"`

	CounterPicks      []query.CounterPick      `json:"counter_picks,omitempty"`
	MechanicHolders   []query.MechanicHolder   `json:"mechanic_holders,omitempty"`
	ArchetypeCounters []query.ArchetypeCounter `json:"archetype_counters,omitempty"`
}

// Empty reports whether an answerable question matched nothing.
func (a *Answer) Empty() bool {
	return !a.Unanswerable && a.Len() == 0
}

// Len returns the number of results.
func (a *Answer) Len() int {
	return len(a.CounterPicks) + len(a.MechanicHolders) + len(a.ArchetypeCounters)
}

// Results returns whichever result slice is set, for serialization.
func (a *Answer) Results() any {
	switch a.Kind {
	case vocab.IntentCounterPick:
		return a.CounterPicks
	case vocab.IntentMechanicSearch:
		return a.MechanicHolders
	case vocab.IntentArchetypeCounters:
		return a.ArchetypeCounters
	default:
		return nil
	}
}

// Dispatcher routes intents to a Querier.
type Dispatcher struct {
	q            Querier
	counterLimit int
}

// New creates a dispatcher. A non-positive counterLimit uses
// DefaultCounterLimit.
func New(q Querier, counterLimit int) *Dispatcher {
	if counterLimit <= 0 {
		counterLimit = DefaultCounterLimit
	}
	return &Dispatcher{q: q, counterLimit: counterLimit}
}

// Dispatch answers in. Unknown intents never reach the engine. Engine errors
// are returned as they are, so storage.ErrUnavailable stays distinguishable
// from an empty Answer.
func (d *Dispatcher) Dispatch(ctx context.Context, in intent.Intent) (*Answer, error) {
	switch v := in.(type) {
	case intent.CounterPick:
		picks, err := d.q.CounterPicks(ctx, v.EnemyChampion, v.MyPosition, d.counterLimit)
		if err != nil {
			return nil, err
		}
		return &Answer{
			Kind:         v.Kind(),
			Context:      fmt.Sprintf("Countering %s in %s", v.EnemyChampion, v.MyPosition.Display()),
			CounterPicks: picks,
		}, nil

	case intent.MechanicSearch:
		holders, err := d.q.MechanicHolders(ctx, v.Mechanic, v.MyPosition)
		if err != nil {
			return nil, err
		}
		return &Answer{
			Kind:            v.Kind(),
			Context:         fmt.Sprintf("Champions with %s in %s", v.Mechanic, v.MyPosition.Display()),
			MechanicHolders: holders,
		}, nil

	case intent.ArchetypeCounters:
		counters, err := d.q.ArchetypeCounters(ctx, v.EnemyArchetype, v.MyPosition)
		if err != nil {
			return nil, err
		}
		return &Answer{
			Kind:              v.Kind(),
			Context:           fmt.Sprintf("Champions that counter %ss in %s", v.EnemyArchetype, v.MyPosition.Display()),
			ArchetypeCounters: counters,
		}, nil

	case intent.Unknown:
		return &Answer{Kind: v.Kind(), Unanswerable: true, Reason: v.Reason}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnhandledIntent, in)
	}
}
