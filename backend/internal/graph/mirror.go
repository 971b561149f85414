package graph

import "context"

// Mirror projects persisted journal rows into a secondary graph database.
// Failures are reported to the caller but never undo relational writes.
type Mirror interface {
	ProjectPersisted(ctx context.Context, result *PersistResult) error
	RemoveEvent(ctx context.Context, userID string, eventID uint) error
	ClearUser(ctx context.Context, userID string) (int64, error)
	Close(ctx context.Context) error
}

// NoopMirror is used when no graph database is configured
type NoopMirror struct{}

func (NoopMirror) ProjectPersisted(context.Context, *PersistResult) error { return nil }
func (NoopMirror) RemoveEvent(context.Context, string, uint) error { return nil }
func (NoopMirror) ClearUser(context.Context, string) (int64, error) { return 0, nil }
func (NoopMirror) Close(context.Context) error { return nil }
