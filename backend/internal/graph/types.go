package graph

import (
	"context"
	"time"

	"moodgraph/backend/internal/store"
)

// Node kinds
const (
	NodeKindDomain = "domain"
	NodeKindEvent  = "event"
	NodeKindEntity = "entity"
)

// Node is one renderable vertex. Kind selects which of the optional fields are set.
type Node struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`

	// event
	Date            string   `json:"date,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	EventType       string   `json:"eventType,omitempty"`
	Domains         []string `json:"domains,omitempty"`
	PrimaryDomain   string   `json:"primaryDomain,omitempty"`
	EmotionalTone   string   `json:"emotionalTone,omitempty"`
	Importance      int      `json:"importance,omitempty"`
	RelatedEntities []string `json:"relatedEntities,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`

	// entity
	EntityType string                 `json:"entityType,omitempty"`
	LocalID    string                 `json:"localId,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Edge is a directed connection between two namespaced node ids. Endpoints are
// not guaranteed to exist in the node list.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Strength *int   `json:"strength,omitempty"`
	Derived  bool   `json:"derived"`
}

// Graph is the full renderable view of one user's journal
type Graph struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	EventCount  int    `json:"eventCount"`
	EntityCount int    `json:"entityCount"`
}

// GraphWriter is the store surface used when persisting an extraction
type GraphWriter interface {
	UpsertEntity(ctx context.Context, entity *store.Entity) (uint, error)
	InsertEvent(ctx context.Context, event *store.Event) (uint, error)
	InsertRelationship(ctx context.Context, rel *store.Relationship) (uint, error)
}

// GraphReader is the store surface used when assembling a graph
type GraphReader interface {
	ListEvents(ctx context.Context, userID string) ([]store.Event, error)
	ListEntities(ctx context.Context, userID string) ([]store.Entity, error)
	ListRelationships(ctx context.Context, userID string) ([]store.Relationship, error)
}

// ContextReader is the store surface used for context retrieval
type ContextReader interface {
	FindEntitiesByName(ctx context.Context, userID string, tokens []string, limit int) ([]store.Entity, error)
	EventsMentioning(ctx context.Context, userID, localID string, limit int) ([]store.Event, error)
}
