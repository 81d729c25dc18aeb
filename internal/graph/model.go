// Package graph provides the knowledge graph data model for GraphLeague.
//
// It defines the node labels that represent the champion roster (champions,
// archetypes, mechanics, roles) and the typed, directed relationships between
// them (plays in, is a, has mechanic, weak to, counters).
package graph

import "strings"

// NodeLabel represents the type of a graph node.
type NodeLabel string

const (
	NodeChampion  NodeLabel = "champion"
	NodeArchetype NodeLabel = "archetype"
	NodeMechanic  NodeLabel = "mechanic"
	NodeRole      NodeLabel = "role"
)

// NodeLabels returns every node label.
func NodeLabels() []NodeLabel {
	return []NodeLabel{NodeChampion, NodeArchetype, NodeMechanic, NodeRole}
}

// RelType represents the type of relationship between graph nodes.
type RelType string

const (
	RelPlaysIn     RelType = "PLAYS_IN"
	RelIsA         RelType = "IS_A"
	RelHasMechanic RelType = "HAS_MECHANIC"
	RelWeakTo      RelType = "WEAK_TO"
	RelCounters    RelType = "COUNTERS"
)

// RelTypes returns every relationship type.
func RelTypes() []RelType {
	return []RelType{RelPlaysIn, RelIsA, RelHasMechanic, RelWeakTo, RelCounters}
}

// Endpoints returns the source and target labels a relationship type connects.
func (t RelType) Endpoints() (source, target NodeLabel, ok bool) {
	switch t {
	case RelPlaysIn:
		return NodeChampion, NodeRole, true
	case RelIsA:
		return NodeChampion, NodeArchetype, true
	case RelHasMechanic, RelWeakTo:
		return NodeChampion, NodeMechanic, true
	case RelCounters:
		return NodeArchetype, NodeArchetype, true
	default:
		return "", "", false
	}
}

// GraphNode represents a node in the knowledge graph.
type GraphNode struct {
	// ID is the unique identifier for the node.
	// Format: {label}:{name}
	ID string `json:"id"`

	// Label is the type of the node.
	Label NodeLabel `json:"label"`

	// Name is the display name (champion name, archetype, mechanic or role).
	Name string `json:"name"`

	// Description is optional free text, used for vocabulary nodes.
	Description string `json:"description,omitempty"`
}

// GraphRelationship represents a directed edge in the knowledge graph.
type GraphRelationship struct {
	// ID is the unique identifier for the relationship.
	ID string `json:"id"`

	// Type is the type of relationship.
	Type RelType `json:"type"`

	// Source is the ID of the source node.
	Source string `json:"source"`

	// Target is the ID of the target node.
	Target string `json:"target"`

	// Reason is the explanation text carried by the edge: the description of
	// a HAS_MECHANIC edge, the reason of a WEAK_TO or COUNTERS edge.
	Reason string `json:"reason,omitempty"`
}

// GenerateID creates a deterministic node ID from label and name.
// Format: {label}:{name}
func GenerateID(label NodeLabel, name string) string {
	return string(label) + ":" + name
}

// ParseID splits a node ID back into its label and name.
func ParseID(id string) (NodeLabel, string, bool) {
	label, name, ok := strings.Cut(id, ":")
	if !ok || name == "" {
		return "", "", false
	}
	return NodeLabel(label), name, true
}

// RelationshipID creates a deterministic relationship ID. At most one edge of
// each type exists between two nodes.
func RelationshipID(relType RelType, source, target string) string {
	return source + "|" + string(relType) + "|" + target
}
