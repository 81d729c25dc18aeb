package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Benny93/graphleague-go/internal/vocab"
)

// ErrInvariant is wrapped by every violation reported by Validate.
var ErrInvariant = errors.New("graph invariant violated")

// Validate checks the structural invariants of a champion graph:
//   - every champion has exactly one IS_A edge;
//   - every relationship connects existing nodes with the labels its type expects;
//   - archetype, mechanic and role nodes are named from the closed vocabulary.
//
// All violations are returned together, sorted for stable output.
func (g *KnowledgeGraph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var problems []string

	for id, node := range g.nodes {
		if err := validateVocabularyNode(node); err != nil {
			problems = append(problems, fmt.Sprintf("node %s: %v", id, err))
		}
	}

	for id := range g.byLabel[NodeChampion] {
		count := 0
		for _, rel := range g.outgoing[id] {
			if rel.Type == RelIsA {
				count++
			}
		}
		if count != 1 {
			problems = append(problems, fmt.Sprintf("champion %s has %d IS_A edges, want exactly 1", id, count))
		}
	}

	for id, rel := range g.relationships {
		wantSource, wantTarget, ok := rel.Type.Endpoints()
		if !ok {
			problems = append(problems, fmt.Sprintf("relationship %s has unknown type %q", id, rel.Type))
			continue
		}
		source, target := g.nodes[rel.Source], g.nodes[rel.Target]
		switch {
		case source == nil:
			problems = append(problems, fmt.Sprintf("relationship %s: missing source node %s", id, rel.Source))
		case target == nil:
			problems = append(problems, fmt.Sprintf("relationship %s: missing target node %s", id, rel.Target))
		case source.Label != wantSource || target.Label != wantTarget:
			problems = append(problems, fmt.Sprintf("relationship %s: %s connects %s to %s, want %s to %s",
				id, rel.Type, source.Label, target.Label, wantSource, wantTarget))
		}
	}

	if len(problems) == 0 {
		return nil
	}

	sort.Strings(problems)
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = fmt.Errorf("%w: %s", ErrInvariant, p)
	}
	return errors.Join(errs...)
}

func validateVocabularyNode(node *GraphNode) error {
	switch node.Label {
	case NodeChampion:
		if node.Name == "" {
			return errors.New("champion without a name")
		}
		return nil
	case NodeArchetype:
		return vocab.Archetype(node.Name).Validate()
	case NodeMechanic:
		return vocab.Mechanic(node.Name).Validate()
	case NodeRole:
		if !vocab.Role(node.Name).IsValid() {
			return &vocab.ValidationError{Field: "role", Value: node.Name}
		}
		return nil
	default:
		return fmt.Errorf("unknown label %q", node.Label)
	}
}
