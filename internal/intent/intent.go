// Package intent turns free-text questions into one structured intent.
//
// Intent is a closed sum type: CounterPick, MechanicSearch, ArchetypeCounters
// and Unknown are its only implementations. The constructors validate every
// field against the vocabulary, so a value obtained from this package is
// always fully populated.
package intent

import (
	"strings"

	"github.com/Benny93/graphleague-go/internal/vocab"
)

// Reasons carried by Unknown intents the classifier produces itself.
const (
	ReasonEmptyQuery  = "empty query"
	ReasonSystemError = "System Error during routing"
	ReasonUnsupported = "The question is not about champion matchups, mechanics or archetypes."
)

// Intent is one classified question.
type Intent interface {
	Kind() vocab.IntentKind
	isIntent()
}

// CounterPick asks who beats an enemy champion.
type CounterPick struct {
	EnemyChampion string
	MyPosition    vocab.Role // empty means any lane
}

// MechanicSearch asks which champions have a mechanic.
type MechanicSearch struct {
	Mechanic   vocab.Mechanic
	MyPosition vocab.Role
}

// ArchetypeCounters asks which champions beat an archetype.
type ArchetypeCounters struct {
	EnemyArchetype vocab.Archetype
	MyPosition     vocab.Role
}

// Unknown is a question the system cannot answer, with the reason why.
type Unknown struct {
	Reason string
}

func (CounterPick) Kind() vocab.IntentKind       { return vocab.IntentCounterPick }
func (MechanicSearch) Kind() vocab.IntentKind    { return vocab.IntentMechanicSearch }
func (ArchetypeCounters) Kind() vocab.IntentKind { return vocab.IntentArchetypeCounters }
func (Unknown) Kind() vocab.IntentKind           { return vocab.IntentUnknown }

func (CounterPick) isIntent()       {}
func (MechanicSearch) isIntent()    {}
func (ArchetypeCounters) isIntent() {}
func (Unknown) isIntent()           {}

// NewCounterPick validates and builds a CounterPick.
func NewCounterPick(enemy string, lane vocab.Role) (CounterPick, error) {
	enemy = strings.TrimSpace(enemy)
	if enemy == "" {
		return CounterPick{}, &vocab.ValidationError{Field: "enemy_champion", Value: enemy}
	}
	if err := lane.ValidateOptional(); err != nil {
		return CounterPick{}, err
	}
	return CounterPick{EnemyChampion: enemy, MyPosition: lane}, nil
}

// NewMechanicSearch validates and builds a MechanicSearch.
func NewMechanicSearch(m vocab.Mechanic, lane vocab.Role) (MechanicSearch, error) {
	if err := m.Validate(); err != nil {
		return MechanicSearch{}, err
	}
	if err := lane.ValidateOptional(); err != nil {
		return MechanicSearch{}, err
	}
	return MechanicSearch{Mechanic: m, MyPosition: lane}, nil
}

// NewArchetypeCounters validates and builds an ArchetypeCounters.
func NewArchetypeCounters(a vocab.Archetype, lane vocab.Role) (ArchetypeCounters, error) {
	if err := a.Validate(); err != nil {
		return ArchetypeCounters{}, err
	}
	if err := lane.ValidateOptional(); err != nil {
		return ArchetypeCounters{}, err
	}
	return ArchetypeCounters{EnemyArchetype: a, MyPosition: lane}, nil
}

// NewUnknown builds an Unknown. An empty reason becomes ReasonUnsupported.
func NewUnknown(reason string) Unknown {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = ReasonUnsupported
	}
	return Unknown{Reason: reason}
}
