package query

import (
	"context"
	"sort"

	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// CounterPick is one ranked counter to an enemy champion.
type CounterPick struct {
	Champion string   `json:"champion"`
	Score    int      `json:"score"`
	Offense  int      `json:"offense"`
	Defense  int      `json:"defense"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
}

// profile is the slice of a champion's edges the scoring reads.
type profile struct {
	id        string
	archetype string                              // archetype node ID, empty if missing
	has       []*graph.GraphRelationship          // HAS_MECHANIC, sorted by target
	weakTo    map[string]*graph.GraphRelationship // WEAK_TO by mechanic ID
}

func (e *Engine) profile(ctx context.Context, id string) (*profile, error) {
	rels, err := e.store.GetOutgoing(ctx, id, "")
	if err != nil {
		return nil, err
	}
	p := &profile{id: id, weakTo: make(map[string]*graph.GraphRelationship)}
	for _, rel := range rels {
		switch rel.Type {
		case graph.RelIsA:
			p.archetype = rel.Target
		case graph.RelHasMechanic:
			p.has = append(p.has, rel)
		case graph.RelWeakTo:
			p.weakTo[rel.Target] = rel
		}
	}
	sortedByTarget(p.has)
	return p, nil
}

// CounterPicks ranks the champions that beat enemy, optionally restricted to
// champions playing lane.
//
// Offense counts the archetype COUNTERS edges from the candidate's archetype
// to the enemy's (ArchetypeWeight each) plus the candidate's mechanics the
// enemy is WEAK_TO (MechanicWeight each). Defense is the same with the roles
// swapped. Only candidates with a strictly positive net score qualify. An
// unknown enemy yields no picks and no error. A non-positive limit uses
// DefaultCounterLimit.
func (e *Engine) CounterPicks(ctx context.Context, enemy string, lane vocab.Role, limit int) ([]CounterPick, error) {
	if enemy == "" {
		return nil, &vocab.ValidationError{Field: "champion", Value: enemy}
	}
	if err := lane.ValidateOptional(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.cfg.DefaultCounterLimit
	}

	ctx, finish := e.begin(ctx, OpCounterPick)
	picks, err := e.counterPicks(ctx, enemy, lane, limit)
	finish(len(picks), err)
	if err != nil {
		return nil, unavailable(OpCounterPick, err)
	}
	if picks == nil {
		picks = []CounterPick{}
	}
	return picks, nil
}

func (e *Engine) counterPicks(ctx context.Context, enemyName string, lane vocab.Role, limit int) ([]CounterPick, error) {
	enemyNode, err := e.resolveChampion(ctx, enemyName)
	if err != nil || enemyNode == nil {
		return nil, err
	}
	enemy, err := e.profile(ctx, enemyNode.ID)
	if err != nil {
		return nil, err
	}

	// Archetype edges into and out of the enemy's archetype, keyed by the
	// other archetype.
	beatsEnemy := map[string]string{}
	beatenByEnemy := map[string]string{}
	if enemy.archetype != "" {
		in, err := e.store.GetIncoming(ctx, enemy.archetype, graph.RelCounters)
		if err != nil {
			return nil, err
		}
		for _, rel := range in {
			beatsEnemy[rel.Source] = rel.Reason
		}
		out, err := e.store.GetOutgoing(ctx, enemy.archetype, graph.RelCounters)
		if err != nil {
			return nil, err
		}
		for _, rel := range out {
			beatenByEnemy[rel.Target] = rel.Reason
		}
	}

	enemyHas := make(map[string]string, len(enemy.has))
	for _, rel := range enemy.has {
		enemyHas[rel.Target] = rel.Reason
	}

	candidates, err := e.candidates(ctx, lane)
	if err != nil {
		return nil, err
	}

	var picks []CounterPick
	for _, id := range candidates {
		if id == enemy.id {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		me, err := e.profile(ctx, id)
		if err != nil {
			return nil, err
		}

		var offense, defense int
		var pros, cons reasons

		if reason, ok := beatsEnemy[me.archetype]; ok && me.archetype != "" {
			offense += e.cfg.ArchetypeWeight
			pros.add(reason)
		}
		for _, rel := range me.has {
			if _, weak := enemy.weakTo[rel.Target]; weak {
				offense += e.cfg.MechanicWeight
				pros.add(rel.Reason)
			}
		}

		if reason, ok := beatenByEnemy[me.archetype]; ok && me.archetype != "" {
			defense += e.cfg.ArchetypeWeight
			cons.add(reason)
		}
		for _, mech := range sortedKeys(me.weakTo) {
			if explanation, ok := enemyHas[mech]; ok {
				defense += e.cfg.MechanicWeight
				cons.add(explanation)
			}
		}

		net := offense - defense
		if net <= 0 {
			continue
		}
		picks = append(picks, CounterPick{
			Champion: nodeName(id),
			Score:    net,
			Offense:  offense,
			Defense:  defense,
			Pros:     pros.list(),
			Cons:     cons.list(),
		})
	}

	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Score != picks[j].Score {
			return picks[i].Score > picks[j].Score
		}
		if picks[i].Offense != picks[j].Offense {
			return picks[i].Offense > picks[j].Offense
		}
		return picks[i].Champion < picks[j].Champion
	})
	if len(picks) > limit {
		picks = picks[:limit]
	}
	return picks, nil
}

// candidates returns the champion IDs eligible under the lane filter.
func (e *Engine) candidates(ctx context.Context, lane vocab.Role) ([]string, error) {
	if lane != "" {
		members, err := e.laneMembers(ctx, lane)
		if err != nil {
			return nil, err
		}
		return sortedKeys(members), nil
	}

	nodes, err := e.store.GetNodesByLabel(ctx, graph.NodeChampion)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// reasons is an ordered set of non-empty strings.
type reasons struct {
	items []string
	seen  map[string]bool
}

func (r *reasons) add(s string) {
	if s == "" || r.seen[s] {
		return
	}
	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	r.seen[s] = true
	r.items = append(r.items, s)
}

func (r *reasons) list() []string {
	if r.items == nil {
		return []string{}
	}
	return r.items
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
