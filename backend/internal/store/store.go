package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moodgraph/backend/internal/metrics"
	apperrors "moodgraph/backend/pkg/errors"
	"moodgraph/backend/pkg/logger"
)

// Store reads and writes a user's journal graph in the relational store.
// Every query is scoped to one user.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New wraps an open database
func New(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		logger: logger.Named("store"),
	}
}

// DB exposes the underlying handle
func (s *Store) DB() *gorm.DB { return s.db }

// UpsertEntity inserts the entity or, when (user, local id) already exists,
// overwrites its type, name and attributes. Returns the durable id.
func (s *Store) UpsertEntity(ctx context.Context, entity *Entity) (uint, error) {
	done := metrics.TimeStoreOp("upsert_entity")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "local_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "name", "name_folded", "attributes", "updated_at"}),
		}).Create(entity).Error; err != nil {
			return err
		}
		// The conflict path does not report the existing id on every dialect
		var row Entity
		if err := tx.Select("id").
			Where("user_id = ? AND local_id = ?", entity.UserID, entity.LocalID).
			Take(&row).Error; err != nil {
			return err
		}
		entity.ID = row.ID
		return nil
	})
	done(err == nil)
	if err != nil {
		return 0, apperrors.NewStoreOperationFailed("upsert entity", err)
	}
	return entity.ID, nil
}

// InsertEvent always inserts a new event row
func (s *Store) InsertEvent(ctx context.Context, event *Event) (uint, error) {
	done := metrics.TimeStoreOp("insert_event")
	err := s.db.WithContext(ctx).Create(event).Error
	done(err == nil)
	if err != nil {
		return 0, apperrors.NewStoreOperationFailed("insert event", err)
	}
	return event.ID, nil
}

// InsertRelationship always inserts a new relationship row
func (s *Store) InsertRelationship(ctx context.Context, rel *Relationship) (uint, error) {
	done := metrics.TimeStoreOp("insert_relationship")
	err := s.db.WithContext(ctx).Create(rel).Error
	done(err == nil)
	if err != nil {
		return 0, apperrors.NewStoreOperationFailed("insert relationship", err)
	}
	return rel.ID, nil
}

// ListEvents returns the user's events in creation order
func (s *Store) ListEvents(ctx context.Context, userID string) ([]Event, error) {
	done := metrics.TimeStoreOp("list_events")
	var events []Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&events).Error
	done(err == nil)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailed("list events", err)
	}
	return events, nil
}

// ListEntities returns the user's entities in creation order
func (s *Store) ListEntities(ctx context.Context, userID string) ([]Entity, error) {
	done := metrics.TimeStoreOp("list_entities")
	var entities []Entity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entities).Error
	done(err == nil)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailed("list entities", err)
	}
	return entities, nil
}

// ListRelationships returns the user's relationships in creation order
func (s *Store) ListRelationships(ctx context.Context, userID string) ([]Relationship, error) {
	done := metrics.TimeStoreOp("list_relationships")
	var rels []Relationship
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rels).Error
	done(err == nil)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailed("list relationships", err)
	}
	return rels, nil
}

// FindEntitiesByName returns entities whose name contains any of the tokens,
// case-insensitively with Unicode folding on every driver
func (s *Store) FindEntitiesByName(ctx context.Context, userID string, tokens []string, limit int) ([]Entity, error) {
	if len(tokens) == 0 {
		return []Entity{}, nil
	}

	conds := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens))
	for _, tok := range tokens {
		conds = append(conds, `name_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(tok))+"%")
	}

	done := metrics.TimeStoreOp("find_entities")
	var entities []Entity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("id ASC").
		Limit(limit).
		Find(&entities).Error
	done(err == nil)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailed("find entities", err)
	}
	return entities, nil
}

// EventsMentioning returns the most recent events whose serialized related entities
// contain localID as a literal, case-sensitive substring, newest date first
func (s *Store) EventsMentioning(ctx context.Context, userID, localID string, limit int) ([]Event, error) {
	done := metrics.TimeStoreOp("events_mentioning")
	var events []Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(s.containsExpr("related_entities"), localID).
		Order("date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	done(err == nil)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailed("events mentioning", err)
	}
	return events, nil
}

// DeleteEvent removes one event and every relationship touching it.
// Returns the number of relationships removed.
func (s *Store) DeleteEvent(ctx context.Context, userID string, eventID uint) (int64, error) {
	done := metrics.TimeStoreOp("delete_event")
	var removedRels int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Where("user_id = ? AND id = ?", userID, eventID).Take(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewEventNotFound(userID, eventID)
			}
			return err
		}

		key := event.Key()
		res := tx.Where("user_id = ? AND (from_id = ? OR to_id = ?)", userID, key, key).Delete(&Relationship{})
		if res.Error != nil {
			return res.Error
		}
		removedRels = res.RowsAffected

		return tx.Delete(&event).Error
	})
	done(err == nil)
	if err != nil {
		var notFound *apperrors.ErrEventNotFound
		if errors.As(err, &notFound) {
			return 0, notFound
		}
		return 0, apperrors.NewStoreOperationFailed("delete event", err)
	}

	s.logger.Info("Deleted event",
		zap.String("user_id", userID),
		zap.Uint("event_id", eventID),
		zap.Int64("relationships_removed", removedRels))
	return removedRels, nil
}

// ClearUser removes every event, entity and relationship of the user.
// Returns the total number of rows removed.
func (s *Store) ClearUser(ctx context.Context, userID string) (int64, error) {
	done := metrics.TimeStoreOp("clear_user")
	var total int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&Relationship{}, &Event{}, &Entity{}} {
			res := tx.Where("user_id = ?", userID).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			total += res.RowsAffected
		}
		return nil
	})
	done(err == nil)
	if err != nil {
		return 0, apperrors.NewStoreOperationFailed("clear user", err)
	}

	s.logger.Info("Cleared user graph", zap.String("user_id", userID), zap.Int64("rows_removed", total))
	return total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsExpr is a case-sensitive substring test on a JSON column. LIKE folds
// ASCII case on SQLite but not on Postgres, so each driver gets its own function.
func (s *Store) containsExpr(column string) string {
	if s.db.Dialector.Name() == DriverPostgres {
		return "strpos(CAST(" + column + " AS TEXT), ?) > 0"
	}
	return "instr(CAST(" + column + " AS TEXT), ?) > 0"
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
