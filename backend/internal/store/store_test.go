package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodgraph/backend/internal/store"
	"moodgraph/backend/internal/store/testutil"
	apperrors "moodgraph/backend/pkg/errors"
)

func newEvent(userID, date, summary string, related ...string) *store.Event {
	return &store.Event{
		UserID:          userID,
		Date:            date,
		Summary:         summary,
		EventType:       "general",
		Domains:         store.EncodeList([]string{"Friends"}),
		EmotionalTone:   "happy",
		Importance:      3,
		RelatedEntities: store.EncodeList(related),
		Keywords:        store.EncodeList(nil),
	}
}

func TestUpsertEntity_SameLocalIDUpdatesInPlace(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	id1, err := s.UpsertEntity(ctx, &store.Entity{
		UserID: "u1", LocalID: "person_sarah", Type: "person", Name: "Sarah",
		Attributes: store.EncodeObject(map[string]interface{}{"relation": "coworker"}),
	})
	require.NoError(t, err)
	require.NotZero(t, id1)

	id2, err := s.UpsertEntity(ctx, &store.Entity{
		UserID: "u1", LocalID: "person_sarah", Type: "person", Name: "Sarah Lee",
		Attributes: store.EncodeObject(map[string]interface{}{"relation": "friend"}),
	})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	entities, err := s.ListEntities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Sarah Lee", entities[0].Name)
	assert.Equal(t, "friend", entities[0].AttributeMap()["relation"])
}

func TestUpsertEntity_ScopedPerUser(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	id1, err := s.UpsertEntity(ctx, &store.Entity{UserID: "u1", LocalID: "food_ramen", Type: "food", Name: "Ramen"})
	require.NoError(t, err)
	id2, err := s.UpsertEntity(ctx, &store.Entity{UserID: "u2", LocalID: "food_ramen", Type: "food", Name: "Ramen"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	entities, err := s.ListEntities(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, entities, 1)
}

func TestInsertEvent_NeverDeduplicates(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "Lunch with Sarah"))
		require.NoError(t, err)
	}

	events, err := s.ListEvents(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Less(t, events[0].ID, events[1].ID)
}

func TestEventDecoding_ToleratesBadColumns(t *testing.T) {
	event := store.Event{Domains: []byte("not json"), RelatedEntities: nil, Keywords: []byte(`{"a":1}`)}

	assert.Equal(t, []string{"Personal Life"}, event.DomainList())
	assert.Equal(t, "Personal Life", event.PrimaryDomain())
	assert.Equal(t, []string{}, event.RelatedEntityList())
	assert.Equal(t, []string{}, event.KeywordList())

	entity := store.Entity{Attributes: []byte("[1,2]")}
	assert.Equal(t, map[string]interface{}{}, entity.AttributeMap())
}

func TestFindEntitiesByName(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	for _, e := range []store.Entity{
		{UserID: "u1", LocalID: "person_sarah", Type: "person", Name: "Sarah"},
		{UserID: "u1", LocalID: "place_cafe", Type: "place", Name: "Blue Bottle Cafe"},
		{UserID: "u1", LocalID: "food_ramen", Type: "food", Name: "Ramen"},
		{UserID: "u2", LocalID: "person_sarah", Type: "person", Name: "Sarah"},
	} {
		e := e
		_, err := s.UpsertEntity(ctx, &e)
		require.NoError(t, err)
	}

	found, err := s.FindEntitiesByName(ctx, "u1", []string{"sarah", "bottle"}, 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Sarah", found[0].Name)
	assert.Equal(t, "Blue Bottle Cafe", found[1].Name)

	found, err = s.FindEntitiesByName(ctx, "u1", []string{"sarah", "bottle"}, 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.FindEntitiesByName(ctx, "u1", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	// LIKE wildcards in tokens are literal
	found, err = s.FindEntitiesByName(ctx, "u1", []string{"%"}, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindEntitiesByName_FoldsUnicodeCase(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	_, err := s.UpsertEntity(ctx, &store.Entity{UserID: "u1", LocalID: "place_ecole", Type: "place", Name: "ÉCOLE Normale"})
	require.NoError(t, err)

	found, err := s.FindEntitiesByName(ctx, "u1", []string{"école"}, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "place_ecole", found[0].LocalID)

	// Renames refresh the folded name
	_, err = s.UpsertEntity(ctx, &store.Entity{UserID: "u1", LocalID: "place_ecole", Type: "place", Name: "Lycée"})
	require.NoError(t, err)
	found, err = s.FindEntitiesByName(ctx, "u1", []string{"école"}, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = s.FindEntitiesByName(ctx, "u1", []string{"lycée"}, 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestEventsMentioning_IsCaseSensitive(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	_, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "upper", "PERSON_SAM"))
	require.NoError(t, err)
	_, err = s.InsertEvent(ctx, newEvent("u1", "2024-05-02", "lower", "person_sam"))
	require.NoError(t, err)
	_, err = s.InsertEvent(ctx, newEvent("u1", "2024-05-03", "wildcard", "person%sam"))
	require.NoError(t, err)

	events, err := s.EventsMentioning(ctx, "u1", "person_sam", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "lower", events[0].Summary)
}

func TestEventsMentioning_NewestFirstAndLimited(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	for _, ev := range []*store.Event{
		newEvent("u1", "2024-05-01", "first", "person_sarah"),
		newEvent("u1", "2024-05-03", "third", "person_sarah"),
		newEvent("u1", "2024-05-02", "second", "person_sarah", "food_ramen"),
		newEvent("u1", "2024-05-04", "unrelated", "food_ramen"),
		newEvent("u1", "2024-05-03", "third-later", "person_sarah"),
	} {
		_, err := s.InsertEvent(ctx, ev)
		require.NoError(t, err)
	}

	events, err := s.EventsMentioning(ctx, "u1", "person_sarah", 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "third-later", events[0].Summary)
	assert.Equal(t, "third", events[1].Summary)
	assert.Equal(t, "second", events[2].Summary)
}

func TestDeleteEvent_RemovesTouchingRelationships(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	ev1, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "one"))
	require.NoError(t, err)
	ev2, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "two"))
	require.NoError(t, err)

	rels := []store.Relationship{
		{UserID: "u1", FromID: store.EventKey(ev1), ToID: store.EventKey(ev2), RelationshipType: "LEADS_TO", Strength: 3},
		{UserID: "u1", FromID: store.EventKey(ev1), ToID: "entity:9", RelationshipType: "WITH_PERSON", Strength: 3},
		{UserID: "u1", FromID: "entity:9", ToID: store.EventKey(ev1), RelationshipType: "ATTENDED", Strength: 3},
		{UserID: "u1", FromID: store.EventKey(ev2), ToID: "entity:9", RelationshipType: "WITH_PERSON", Strength: 3},
	}
	for i := range rels {
		_, err := s.InsertRelationship(ctx, &rels[i])
		require.NoError(t, err)
	}

	removed, err := s.DeleteEvent(ctx, "u1", ev1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	events, err := s.ListEvents(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev2, events[0].ID)

	left, err := s.ListRelationships(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, store.EventKey(ev2), left[0].FromID)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	ev, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "mine"))
	require.NoError(t, err)

	_, err = s.DeleteEvent(ctx, "u1", ev+100)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	// Another user's event is not visible
	_, err = s.DeleteEvent(ctx, "u2", ev)
	var notFound *apperrors.ErrEventNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "u2", notFound.UserID)
}

func TestClearUser_CountsAllRows(t *testing.T) {
	s := testutil.Store(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.InsertEvent(ctx, newEvent("u1", "2024-05-01", "event"))
		require.NoError(t, err)
	}
	for _, local := range []string{"a", "b", "c", "d"} {
		_, err := s.UpsertEntity(ctx, &store.Entity{UserID: "u1", LocalID: local, Type: "object", Name: local})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := s.InsertRelationship(ctx, &store.Relationship{UserID: "u1", FromID: "a", ToID: "b", RelationshipType: "RELATED_TO", Strength: 3})
		require.NoError(t, err)
	}
	_, err := s.InsertEvent(ctx, newEvent("u2", "2024-05-01", "other user"))
	require.NoError(t, err)

	removed, err := s.ClearUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)

	events, err := s.ListEvents(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, events)

	others, err := s.ListEvents(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
