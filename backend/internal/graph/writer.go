package graph

import (
	"context"

	"go.uber.org/zap"

	"moodgraph/backend/internal/extractor"
	"moodgraph/backend/internal/store"
	"moodgraph/backend/pkg/logger"
)

// IDTranslator maps transcript-local ids to durable namespaced ids and back.
// It lives for a single Persist call.
type IDTranslator struct {
	events   map[string]string
	entities map[string]string
	locals   map[string]string
}

func newIDTranslator() *IDTranslator {
	return &IDTranslator{
		events:   make(map[string]string),
		entities: make(map[string]string),
		locals:   make(map[string]string),
	}
}

func (t *IDTranslator) addEntity(localID, durableID string) {
	t.entities[localID] = durableID
	t.locals[durableID] = localID
}

func (t *IDTranslator) addEvent(localID, durableID string) {
	t.events[localID] = durableID
	t.locals[durableID] = localID
}

// Resolve looks a local id up among events first, then entities
func (t *IDTranslator) Resolve(localID string) (string, bool) {
	if id, ok := t.events[localID]; ok {
		return id, true
	}
	if id, ok := t.entities[localID]; ok {
		return id, true
	}
	return "", false
}

// LocalID returns the local id a durable id was created from
func (t *IDTranslator) LocalID(durableID string) (string, bool) {
	id, ok := t.locals[durableID]
	return id, ok
}

// PersistResult reports the rows written by one Persist call
type PersistResult struct {
	UserID        string
	Date          string
	Entities      []store.Entity
	Events        []store.Event
	Relationships []store.Relationship
	// Unresolved counts relationship endpoints stored as raw local ids
	Unresolved int
	IDs        *IDTranslator
}

// Writer persists extraction results
type Writer struct {
	store  GraphWriter
	logger *zap.Logger
}

// NewWriter creates a writer over the given store
func NewWriter(s GraphWriter) *Writer {
	return &Writer{
		store:  s,
		logger: logger.Named("graph_writer"),
	}
}

// Persist saves entities (upsert by local id), then events, then relationships
// (always inserted), translating local ids as it goes. It stops at the first
// store error; rows written before it stay written.
func (w *Writer) Persist(ctx context.Context, userID, date string, result *extractor.Result) (*PersistResult, error) {
	ids := newIDTranslator()
	out := &PersistResult{UserID: userID, Date: date, IDs: ids}
	if result == nil {
		return out, nil
	}

	for _, e := range result.Entities {
		row := store.Entity{
			UserID:     userID,
			LocalID:    e.ID,
			Type:       e.Type,
			Name:       e.Name,
			Attributes: store.EncodeObject(e.Attributes),
		}
		if _, err := w.store.UpsertEntity(ctx, &row); err != nil {
			return out, err
		}
		ids.addEntity(e.ID, row.Key())
		out.Entities = append(out.Entities, row)
	}

	for _, ev := range result.Events {
		row := store.Event{
			UserID:          userID,
			Date:            date,
			Summary:         ev.Summary,
			EventType:       ev.EventType,
			Domains:         store.EncodeList(ev.Domains),
			EmotionalTone:   ev.EmotionalTone,
			Importance:      ev.Importance,
			RelatedEntities: store.EncodeList(ev.RelatedEntities),
			Keywords:        store.EncodeList(ev.Keywords),
		}
		if _, err := w.store.InsertEvent(ctx, &row); err != nil {
			return out, err
		}
		ids.addEvent(ev.ID, row.Key())
		out.Events = append(out.Events, row)
	}

	for _, r := range result.Relationships {
		from, ok := ids.Resolve(r.FromID)
		if !ok {
			from = r.FromID
			out.Unresolved++
		}
		to, ok := ids.Resolve(r.ToID)
		if !ok {
			to = r.ToID
			out.Unresolved++
		}
		row := store.Relationship{
			UserID:           userID,
			FromID:           from,
			ToID:             to,
			RelationshipType: r.RelationshipType,
			Strength:         r.Strength,
		}
		if _, err := w.store.InsertRelationship(ctx, &row); err != nil {
			return out, err
		}
		out.Relationships = append(out.Relationships, row)
	}

	if out.Unresolved > 0 {
		w.logger.Warn("Stored relationships with unresolved endpoints",
			zap.String("user_id", userID),
			zap.Int("unresolved", out.Unresolved))
	}
	w.logger.Info("Persisted extraction",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("entities", len(out.Entities)),
		zap.Int("events", len(out.Events)),
		zap.Int("relationships", len(out.Relationships)))

	return out, nil
}
