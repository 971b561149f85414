package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodgraph/backend/internal/constants"
	apperrors "moodgraph/backend/pkg/errors"
)

func TestParse_ProseWrappedObject(t *testing.T) {
	p := NewParser(nil)
	raw := "Here is the graph you asked for:\n```json\n" +
		`{"entities":[{"id":"person_sarah","type":"person","name":"Sarah","attributes":{"relation":"coworker"}}],` +
		`"events":[{"id":"ev1","summary":"Had lunch with Sarah","event_type":"social","domains":["Friends","Work Life"],"emotional_tone":"happy","importance":4,"related_entities":["person_sarah"],"keywords":["lunch"]}],` +
		`"relationships":[{"from_id":"ev1","to_id":"person_sarah","relationship_type":"WITH_PERSON","strength":5}]}` +
		"\n```\nLet me know if you need anything else."

	result, err := p.Parse(raw)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Sarah", result.Entities[0].Name)
	assert.Equal(t, "coworker", result.Entities[0].Attributes["relation"])

	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	assert.Equal(t, []string{"Friends", "Work Life"}, ev.Domains)
	assert.Equal(t, "Friends", ev.PrimaryDomain())
	assert.Equal(t, 4, ev.Importance)
	assert.Equal(t, []string{"person_sarah"}, ev.RelatedEntities)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "WITH_PERSON", result.Relationships[0].RelationshipType)
	assert.Equal(t, 5, result.Relationships[0].Strength)
}

func TestParse_NoBraceIsEmpty(t *testing.T) {
	p := NewParser(nil)
	result, err := p.Parse("Nothing noteworthy happened today.")
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.NotNil(t, result.Entities)
	assert.NotNil(t, result.Events)
	assert.NotNil(t, result.Relationships)
}

func TestParse_MalformedJSON(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "truncated", raw: `{"entities": [`},
		{name: "closing brace before opening", raw: `} then {`},
		{name: "trailing comma", raw: `{"entities": [], }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeExtraction))

			var parseErr *apperrors.ErrExtractionParseFailed
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.raw, parseErr.Raw)
		})
	}
}

func TestParse_AppliesDefaults(t *testing.T) {
	p := NewParser(nil)
	raw := `{"entities":[{"name":"Blue Bottle Cafe","type":"Place"}],
		"events":[{"summary":"Went for coffee"}],
		"relationships":[{"from_id":"ev1","to_id":"place_blue_bottle_cafe"}]}`

	result, err := p.Parse(raw)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	entity := result.Entities[0]
	assert.Equal(t, "place", entity.Type)
	assert.Equal(t, "place_blue_bottle_cafe", entity.ID)
	assert.NotNil(t, entity.Attributes)
	assert.Empty(t, entity.Attributes)

	require.Len(t, result.Events, 1)
	ev := result.Events[0]
	assert.True(t, strings.HasPrefix(ev.ID, "ev-"))
	assert.Equal(t, constants.DefaultEventType, ev.EventType)
	assert.Equal(t, []string{constants.DefaultDomain}, ev.Domains)
	assert.Equal(t, constants.DefaultTone, ev.EmotionalTone)
	assert.Equal(t, constants.DefaultImportance, ev.Importance)
	assert.NotNil(t, ev.RelatedEntities)
	assert.NotNil(t, ev.Keywords)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, constants.DefaultRelationshipType, result.Relationships[0].RelationshipType)
	assert.Equal(t, constants.DefaultStrength, result.Relationships[0].Strength)
}

func TestParse_RepairsOutOfVocabularyValues(t *testing.T) {
	p := NewParser(nil)
	raw := `{"entities":[{"id":"thing","type":"spaceship","name":"Rocket","attributes":"shiny"}],
		"events":[
			{"id":"ev1","summary":"Ran 5k","domains":"health","emotional_tone":"Ecstatic","importance":"9","keywords":["Running","running"," "]},
			{"id":"ev2","summary":"Quiet evening","domains":["Hobbies","family","Family"],"emotional_tone":"CALM","importance":-2}
		],
		"relationships":[{"from_id":"ev1","to_id":"ev2","relationship_type":"led to","strength":"0"}]}`

	result, err := p.Parse(raw)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, constants.EntityTypeObject, result.Entities[0].Type)
	assert.Empty(t, result.Entities[0].Attributes)

	require.Len(t, result.Events, 2)
	assert.Equal(t, []string{constants.DomainHealth}, result.Events[0].Domains)
	assert.Equal(t, constants.ToneNeutral, result.Events[0].EmotionalTone)
	assert.Equal(t, constants.MaxScale, result.Events[0].Importance)
	assert.Equal(t, []string{"running"}, result.Events[0].Keywords)

	assert.Equal(t, []string{constants.DomainFamily}, result.Events[1].Domains)
	assert.Equal(t, constants.ToneCalm, result.Events[1].EmotionalTone)
	assert.Equal(t, constants.MinScale, result.Events[1].Importance)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "LED_TO", result.Relationships[0].RelationshipType)
	assert.Equal(t, constants.DefaultStrength, result.Relationships[0].Strength)
}

func TestParse_DropsIncompleteRecords(t *testing.T) {
	p := NewParser(nil)
	raw := `{"entities":[{"id":"x","type":"person"},{"id":"person_tom","type":"person","name":"Tom"}],
		"events":[{"id":"ev1","summary":"  "},{"id":"ev2","summary":"Called Tom"}],
		"relationships":[{"from_id":"ev2"},{"from_id":"ev2","to_id":"person_tom"}]}`

	result, err := p.Parse(raw)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "person_tom", result.Entities[0].ID)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "ev2", result.Events[0].ID)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "person_tom", result.Relationships[0].ToID)
}

func TestParse_NumericIDsAreCoerced(t *testing.T) {
	p := NewParser(nil)
	raw := `{"entities":[{"id":1,"type":"person","name":"Sam"}],
		"events":[{"id":2,"summary":"Walked with Sam","domains":["Friends"],"related_entities":[1]}],
		"relationships":[{"from_id":2,"to_id":1,"relationship_type":"with","strength":4},{"from_id":2,"to_id":{"id":1}}]}`

	result, err := p.Parse(raw)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "1", result.Entities[0].ID)
	assert.Equal(t, "Sam", result.Entities[0].Name)

	require.Len(t, result.Events, 1)
	assert.Equal(t, "2", result.Events[0].ID)
	assert.Equal(t, []string{"1"}, result.Events[0].RelatedEntities)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "2", result.Relationships[0].FromID)
	assert.Equal(t, "1", result.Relationships[0].ToID)
	assert.Equal(t, "WITH", result.Relationships[0].RelationshipType)
}

func TestParse_DuplicateEntityIDsKeepLast(t *testing.T) {
	p := NewParser(nil)
	raw := `{"entities":[
		{"id":"person_mia","type":"person","name":"Mia"},
		{"id":"food_ramen","type":"food","name":"Ramen"},
		{"id":"person_mia","type":"person","name":"Mia Chen","attributes":{"relation":"sister"}}
	]}`

	result, err := p.Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Entities, 2)
	assert.Equal(t, "Mia Chen", result.Entities[0].Name)
	assert.Equal(t, "sister", result.Entities[0].Attributes["relation"])
	assert.Equal(t, "food_ramen", result.Entities[1].ID)
}

func TestBuildSystemPrompt_NamesVocabularies(t *testing.T) {
	prompt := BuildSystemPrompt()
	for _, d := range constants.Domains {
		assert.Contains(t, prompt, d)
	}
	for _, tone := range constants.EmotionalTones {
		assert.Contains(t, prompt, tone)
	}
	for _, et := range constants.EntityTypes {
		assert.Contains(t, prompt, et)
	}
	assert.Contains(t, prompt, "EVERY distinct event")
	assert.Contains(t, prompt, "no markdown")
}
