package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/graph"
)

// Neo4jConfig holds the connection settings for a Neo4j server.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// cypherLabels maps graph labels onto Neo4j node labels. Labels are never
// taken from user input; every Cypher label comes from this table.
var cypherLabels = map[graph.NodeLabel]string{
	graph.NodeChampion:  "Champion",
	graph.NodeArchetype: "Archetype",
	graph.NodeMechanic:  "Mechanic",
	graph.NodeRole:      "Role",
}

func graphLabel(cypher string) (graph.NodeLabel, bool) {
	for label, c := range cypherLabels {
		if c == cypher {
			return label, true
		}
	}
	return "", false
}

// Neo4jBackend stores the champion graph in a Neo4j database. Nodes are keyed
// by their name property under one of the labels in cypherLabels.
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jBackend connects to Neo4j and verifies connectivity.
func NewNeo4jBackend(ctx context.Context, cfg Neo4jConfig, logger *zap.Logger) (*Neo4jBackend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: connecting to %s: %w", ErrUnavailable, cfg.URI, err)
	}

	logger.Info("connected to neo4j", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))

	return &Neo4jBackend{driver: driver, database: cfg.Database, logger: logger}, nil
}

// Close implements StorageBackend.
func (n *Neo4jBackend) Close() error {
	return n.driver.Close(context.Background())
}

func (n *Neo4jBackend) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: n.database})
}

func (n *Neo4jBackend) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// GetNode implements Reader.
func (n *Neo4jBackend) GetNode(ctx context.Context, nodeID string) (*graph.GraphNode, error) {
	label, name, ok := graph.ParseID(nodeID)
	cypher, known := cypherLabels[label]
	if !ok || !known {
		return nil, nil
	}

	query := fmt.Sprintf(`
		MATCH (n:%s {name: $name})
		RETURN n.name AS name, n.description AS description
		LIMIT 1
	`, cypher)

	records, err := n.read(ctx, query, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %s: %w", nodeID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return recordNode(label, records[0]), nil
}

// GetNodesByLabel implements Reader.
func (n *Neo4jBackend) GetNodesByLabel(ctx context.Context, label graph.NodeLabel) ([]*graph.GraphNode, error) {
	cypher, ok := cypherLabels[label]
	if !ok {
		return nil, nil
	}

	query := fmt.Sprintf(`
		MATCH (n:%s)
		RETURN n.name AS name, n.description AS description
	`, cypher)

	records, err := n.read(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s nodes: %w", label, err)
	}

	nodes := make([]*graph.GraphNode, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, recordNode(label, record))
	}
	return nodes, nil
}

// GetOutgoing implements Reader.
func (n *Neo4jBackend) GetOutgoing(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	return n.adjacent(ctx, nodeID, relType, true)
}

// GetIncoming implements Reader.
func (n *Neo4jBackend) GetIncoming(ctx context.Context, nodeID string, relType graph.RelType) ([]*graph.GraphRelationship, error) {
	return n.adjacent(ctx, nodeID, relType, false)
}

func (n *Neo4jBackend) adjacent(ctx context.Context, nodeID string, relType graph.RelType, outgoing bool) ([]*graph.GraphRelationship, error) {
	label, name, ok := graph.ParseID(nodeID)
	cypher, known := cypherLabels[label]
	if !ok || !known {
		return nil, nil
	}

	pattern := "(a:%s {name: $name})-[r]->(b)"
	if !outgoing {
		pattern = "(b)-[r]->(a:%s {name: $name})"
	}
	query := fmt.Sprintf(`
		MATCH `+pattern+`
		WHERE $type = '' OR type(r) = $type
		RETURN type(r) AS type, labels(b)[0] AS other_label, b.name AS other_name,
		       coalesce(r.reason, r.description, '') AS reason
	`, cypher)

	records, err := n.read(ctx, query, map[string]any{"name": name, "type": string(relType)})
	if err != nil {
		return nil, fmt.Errorf("failed to traverse from %s: %w", nodeID, err)
	}

	rels := make([]*graph.GraphRelationship, 0, len(records))
	for _, record := range records {
		otherLabel, ok := graphLabel(getStringFromRecord(record, "other_label"))
		if !ok {
			continue
		}
		other := graph.GenerateID(otherLabel, getStringFromRecord(record, "other_name"))
		source, target := nodeID, other
		if !outgoing {
			source, target = other, nodeID
		}
		t := graph.RelType(getStringFromRecord(record, "type"))
		rels = append(rels, &graph.GraphRelationship{
			ID:     graph.RelationshipID(t, source, target),
			Type:   t,
			Source: source,
			Target: target,
			Reason: getStringFromRecord(record, "reason"),
		})
	}
	return rels, nil
}

// BulkLoad replaces every champion graph node in the database with the
// contents of g inside one write transaction.
func (n *Neo4jBackend) BulkLoad(ctx context.Context, g *graph.KnowledgeGraph) error {
	if err := n.ensureIndexes(ctx); err != nil {
		return err
	}

	nodeRows := make(map[graph.NodeLabel][]any)
	for node := range g.IterNodes() {
		nodeRows[node.Label] = append(nodeRows[node.Label], map[string]any{
			"name":        node.Name,
			"description": node.Description,
		})
	}

	relRows := make(map[graph.RelType][]any)
	for rel := range g.IterRelationships() {
		_, source, ok1 := graph.ParseID(rel.Source)
		_, target, ok2 := graph.ParseID(rel.Target)
		if !ok1 || !ok2 {
			return fmt.Errorf("relationship %s has malformed endpoints", rel.ID)
		}
		relRows[rel.Type] = append(relRows[rel.Type], map[string]any{
			"source": source,
			"target": target,
			"reason": rel.Reason,
		})
	}

	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		labels := make([]string, 0, len(cypherLabels))
		for _, label := range graph.NodeLabels() {
			labels = append(labels, "n:"+cypherLabels[label])
		}
		wipe := "MATCH (n) WHERE " + strings.Join(labels, " OR ") + " DETACH DELETE n"
		if err := runConsume(ctx, tx, wipe, nil); err != nil {
			return nil, fmt.Errorf("clearing graph: %w", err)
		}

		for _, label := range graph.NodeLabels() {
			rows := nodeRows[label]
			if len(rows) == 0 {
				continue
			}
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				CREATE (n:%s {name: row.name, description: row.description})
			`, cypherLabels[label])
			if err := runConsume(ctx, tx, query, map[string]any{"rows": rows}); err != nil {
				return nil, fmt.Errorf("creating %s nodes: %w", label, err)
			}
		}

		for _, relType := range graph.RelTypes() {
			rows := relRows[relType]
			if len(rows) == 0 {
				continue
			}
			sourceLabel, targetLabel, _ := relType.Endpoints()
			property := "reason"
			if relType == graph.RelHasMechanic {
				property = "description"
			}
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				MATCH (s:%s {name: row.source})
				MATCH (t:%s {name: row.target})
				CREATE (s)-[r:%s]->(t)
				SET r.%s = row.reason
			`, cypherLabels[sourceLabel], cypherLabels[targetLabel], relType, property)
			if err := runConsume(ctx, tx, query, map[string]any{"rows": rows}); err != nil {
				return nil, fmt.Errorf("creating %s relationships: %w", relType, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("bulk load: %w", err)
	}

	n.logger.Info("loaded graph into neo4j",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("relationships", g.RelationshipCount()))
	return nil
}

// ensureIndexes creates the name indexes. Schema changes run in their own
// auto-commit session because Neo4j refuses to mix them with data writes.
func (n *Neo4jBackend) ensureIndexes(ctx context.Context) error {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range graph.NodeLabels() {
		cypher := cypherLabels[label]
		query := fmt.Sprintf("CREATE INDEX %s_name IF NOT EXISTS FOR (n:%s) ON (n.name)", label, cypher)
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return fmt.Errorf("creating index on %s: %w", cypher, err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("creating index on %s: %w", cypher, err)
		}
	}
	return nil
}

// Stats implements StorageBackend.
func (n *Neo4jBackend) Stats(ctx context.Context) (Stats, error) {
	records, err := n.read(ctx, `
		MATCH (n)
		RETURN labels(n)[0] AS label, count(n) AS count
	`, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count nodes: %w", err)
	}

	stats := Stats{Backend: "neo4j", ByLabel: make(map[string]int)}
	for _, record := range records {
		label, ok := graphLabel(getStringFromRecord(record, "label"))
		if !ok {
			continue
		}
		count := getIntFromRecord(record, "count")
		stats.ByLabel[string(label)] = count
		stats.Nodes += count
	}

	records, err = n.read(ctx, `
		MATCH (:Champion|Archetype)-[r]->()
		RETURN count(r) AS count
	`, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count relationships: %w", err)
	}
	if len(records) > 0 {
		stats.Relationships = getIntFromRecord(records[0], "count")
	}
	return stats, nil
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func recordNode(label graph.NodeLabel, record *neo4j.Record) *graph.GraphNode {
	name := getStringFromRecord(record, "name")
	return &graph.GraphNode{
		ID:          graph.GenerateID(label, name),
		Label:       label,
		Name:        name,
		Description: getStringFromRecord(record, "description"),
	}
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}
