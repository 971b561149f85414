package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"moodgraph/backend/internal/store"
	"moodgraph/backend/pkg/logger"
)

// Neo4jMirror keeps a Neo4j copy of each user's journal graph:
// (:JournalEntity), (:JournalEvent)-[:IN_DOMAIN]->(:Domain) and [:RELATES] edges.
// Nodes carry the same namespaced key the relational store uses.
type Neo4jMirror struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewNeo4jMirror connects to Neo4j and verifies connectivity
func NewNeo4jMirror(ctx context.Context, uri, user, password string) (*Neo4jMirror, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}
	return NewNeo4jMirrorWithDriver(driver), nil
}

// NewNeo4jMirrorWithDriver wraps an existing driver
func NewNeo4jMirrorWithDriver(driver neo4j.DriverWithContext) *Neo4jMirror {
	return &Neo4jMirror{
		driver: driver,
		logger: logger.Named("neo4j_mirror"),
	}
}

// Close closes the Neo4j driver connection
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

// ProjectPersisted merges the entities and events of one Persist call and
// creates its relationships. Relationships whose endpoints are not mirrored
// nodes are skipped by the MATCH.
func (m *Neo4jMirror) ProjectPersisted(ctx context.Context, result *PersistResult) error {
	if result == nil {
		return nil
	}
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if len(result.Entities) > 0 {
		query := `
			UNWIND $entities AS e
			MERGE (n:JournalEntity {user_id: $userID, key: e.key})
			SET n.local_id = e.local_id,
			    n.name = e.name,
			    n.type = e.type,
			    n.updated_at = datetime()
		`
		if err := runAndConsume(ctx, session, query, map[string]interface{}{
			"userID":   result.UserID,
			"entities": entityParams(result.Entities),
		}); err != nil {
			return fmt.Errorf("failed to mirror entities: %w", err)
		}
	}

	if len(result.Events) > 0 {
		query := `
			UNWIND $events AS ev
			MERGE (n:JournalEvent {user_id: $userID, key: ev.key})
			SET n.local_id = ev.local_id,
			    n.date = ev.date,
			    n.summary = ev.summary,
			    n.event_type = ev.event_type,
			    n.emotional_tone = ev.emotional_tone,
			    n.importance = ev.importance,
			    n.keywords = ev.keywords
			WITH n, ev
			UNWIND ev.domains AS domain
			MERGE (d:Domain {name: domain})
			MERGE (n)-[:IN_DOMAIN]->(d)
		`
		if err := runAndConsume(ctx, session, query, map[string]interface{}{
			"userID": result.UserID,
			"events": eventParams(result.Events, result.IDs),
		}); err != nil {
			return fmt.Errorf("failed to mirror events: %w", err)
		}
	}

	if len(result.Relationships) > 0 {
		query := `
			UNWIND $relationships AS r
			MATCH (a {user_id: $userID, key: r.from})
			MATCH (b {user_id: $userID, key: r.to})
			CREATE (a)-[:RELATES {type: r.type, strength: r.strength, row_id: r.id}]->(b)
		`
		if err := runAndConsume(ctx, session, query, map[string]interface{}{
			"userID":        result.UserID,
			"relationships": relationshipParams(result.Relationships),
		}); err != nil {
			return fmt.Errorf("failed to mirror relationships: %w", err)
		}
	}

	m.logger.Debug("Mirrored persisted rows",
		zap.String("user_id", result.UserID),
		zap.Int("entities", len(result.Entities)),
		zap.Int("events", len(result.Events)),
		zap.Int("relationships", len(result.Relationships)))
	return nil
}

// RemoveEvent deletes the mirrored event and its edges
func (m *Neo4jMirror) RemoveEvent(ctx context.Context, userID string, eventID uint) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:JournalEvent {user_id: $userID, key: $key})
		DETACH DELETE n
	`
	if err := runAndConsume(ctx, session, query, map[string]interface{}{
		"userID": userID,
		"key":    store.EventKey(eventID),
	}); err != nil {
		return fmt.Errorf("failed to remove mirrored event: %w", err)
	}
	return nil
}

// ClearUser deletes every mirrored node of the user and returns how many were removed
func (m *Neo4jMirror) ClearUser(ctx context.Context, userID string) (int64, error) {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n {user_id: $userID})
		WHERE n:JournalEvent OR n:JournalEntity
		DETACH DELETE n
		RETURN count(n) as removed
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear mirrored graph: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read clear result: %w", err)
	}
	return recordCount(record, "removed"), nil
}

// CountNodes returns the number of mirrored events and entities of the user
func (m *Neo4jMirror) CountNodes(ctx context.Context, userID string) (events, entities int64, err error) {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		OPTIONAL MATCH (ev:JournalEvent {user_id: $userID})
		WITH count(ev) as events
		OPTIONAL MATCH (en:JournalEntity {user_id: $userID})
		RETURN events, count(en) as entities
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count mirrored nodes: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read node counts: %w", err)
	}
	return recordCount(record, "events"), recordCount(record, "entities"), nil
}

func entityParams(entities []store.Entity) []interface{} {
	out := make([]interface{}, 0, len(entities))
	for i := range entities {
		out = append(out, map[string]interface{}{
			"key":      entities[i].Key(),
			"local_id": entities[i].LocalID,
			"name":     entities[i].Name,
			"type":     entities[i].Type,
		})
	}
	return out
}

func eventParams(events []store.Event, ids *IDTranslator) []interface{} {
	out := make([]interface{}, 0, len(events))
	for i := range events {
		key := events[i].Key()
		localID := ""
		if ids != nil {
			localID, _ = ids.LocalID(key)
		}
		out = append(out, map[string]interface{}{
			"key":            key,
			"local_id":       localID,
			"date":           events[i].Date,
			"summary":        events[i].Summary,
			"event_type":     events[i].EventType,
			"emotional_tone": events[i].EmotionalTone,
			"importance":     int64(events[i].Importance),
			"keywords":       events[i].KeywordList(),
			"domains":        events[i].DomainList(),
		})
	}
	return out
}

func relationshipParams(rels []store.Relationship) []interface{} {
	out := make([]interface{}, 0, len(rels))
	for i := range rels {
		out = append(out, map[string]interface{}{
			"id":       int64(rels[i].ID),
			"from":     rels[i].FromID,
			"to":       rels[i].ToID,
			"type":     rels[i].RelationshipType,
			"strength": int64(rels[i].Strength),
		})
	}
	return out
}

// runAndConsume runs a write and waits for its summary so server errors surface here
func runAndConsume(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]interface{}) error {
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}
