package query

import (
	"context"
	"sort"

	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// MechanicHolder is a champion that has a mechanic, with its explanation.
type MechanicHolder struct {
	Champion    string `json:"champion"`
	Explanation string `json:"explanation"`
}

// ArchetypeCounter is a champion whose archetype counters the target.
type ArchetypeCounter struct {
	Champion  string `json:"champion"`
	Archetype string `json:"archetype"`
	Reason    string `json:"reason"`
}

// MechanicHolders lists champions with mechanic, alphabetically, capped at
// SearchLimit.
func (e *Engine) MechanicHolders(ctx context.Context, mechanic vocab.Mechanic, lane vocab.Role) ([]MechanicHolder, error) {
	if err := mechanic.Validate(); err != nil {
		return nil, err
	}
	if err := lane.ValidateOptional(); err != nil {
		return nil, err
	}

	ctx, finish := e.begin(ctx, OpMechanicSearch)
	holders, err := e.mechanicHolders(ctx, mechanic, lane)
	finish(len(holders), err)
	if err != nil {
		return nil, unavailable(OpMechanicSearch, err)
	}
	return holders, nil
}

func (e *Engine) mechanicHolders(ctx context.Context, mechanic vocab.Mechanic, lane vocab.Role) ([]MechanicHolder, error) {
	members, err := e.laneMembers(ctx, lane)
	if err != nil {
		return nil, err
	}
	rels, err := e.store.GetIncoming(ctx, graph.GenerateID(graph.NodeMechanic, string(mechanic)), graph.RelHasMechanic)
	if err != nil {
		return nil, err
	}

	holders := make([]MechanicHolder, 0, len(rels))
	for _, rel := range rels {
		if members != nil && !members[rel.Source] {
			continue
		}
		holders = append(holders, MechanicHolder{
			Champion:    nodeName(rel.Source),
			Explanation: rel.Reason,
		})
	}

	sort.Slice(holders, func(i, j int) bool { return holders[i].Champion < holders[j].Champion })
	if len(holders) > e.cfg.SearchLimit {
		holders = holders[:e.cfg.SearchLimit]
	}
	return holders, nil
}

// ArchetypeCounters lists champions of every archetype that COUNTERS target,
// with the edge's reason. A champion appears once per countering archetype.
// Results are alphabetical and capped at SearchLimit.
func (e *Engine) ArchetypeCounters(ctx context.Context, target vocab.Archetype, lane vocab.Role) ([]ArchetypeCounter, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := lane.ValidateOptional(); err != nil {
		return nil, err
	}

	ctx, finish := e.begin(ctx, OpArchetypeCounters)
	counters, err := e.archetypeCounters(ctx, target, lane)
	finish(len(counters), err)
	if err != nil {
		return nil, unavailable(OpArchetypeCounters, err)
	}
	return counters, nil
}

func (e *Engine) archetypeCounters(ctx context.Context, target vocab.Archetype, lane vocab.Role) ([]ArchetypeCounter, error) {
	members, err := e.laneMembers(ctx, lane)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.GetIncoming(ctx, graph.GenerateID(graph.NodeArchetype, string(target)), graph.RelCounters)
	if err != nil {
		return nil, err
	}

	var counters []ArchetypeCounter
	for _, edge := range edges {
		champions, err := e.store.GetIncoming(ctx, edge.Source, graph.RelIsA)
		if err != nil {
			return nil, err
		}
		archetype := nodeName(edge.Source)
		for _, rel := range champions {
			if members != nil && !members[rel.Source] {
				continue
			}
			counters = append(counters, ArchetypeCounter{
				Champion:  nodeName(rel.Source),
				Archetype: archetype,
				Reason:    edge.Reason,
			})
		}
	}

	sort.Slice(counters, func(i, j int) bool {
		if counters[i].Champion != counters[j].Champion {
			return counters[i].Champion < counters[j].Champion
		}
		return counters[i].Archetype < counters[j].Archetype
	})
	if len(counters) > e.cfg.SearchLimit {
		counters = counters[:e.cfg.SearchLimit]
	}
	if counters == nil {
		counters = []ArchetypeCounter{}
	}
	return counters, nil
}
