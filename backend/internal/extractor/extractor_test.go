package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/state"
	apperrors "moodgraph/backend/pkg/errors"
)

var sampleTranscript = state.Transcript{
	{Sender: state.SenderAssistant, Content: "How was your day?"},
	{Sender: state.SenderUser, Content: "Had ramen with Mia, then a long run."},
}

func TestExtract_SendsTranscriptAndParses(t *testing.T) {
	gen := adapter.NewScriptedGenerator(adapter.ScriptedReply{
		Content: `{"entities":[{"id":"person_mia","type":"person","name":"Mia"}],"events":[{"id":"ev1","summary":"Ramen with Mia"},{"id":"ev2","summary":"Long run","domains":["Health"]}],"relationships":[{"from_id":"ev1","to_id":"ev2","relationship_type":"FOLLOWED_BY"}]}`,
	})
	x := New(gen)

	result, err := x.Extract(context.Background(), sampleTranscript)
	require.NoError(t, err)
	assert.Len(t, result.Entities, 1)
	assert.Len(t, result.Events, 2)
	assert.Len(t, result.Relationships, 1)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, BuildSystemPrompt(), calls[0].SystemPrompt)
	require.Len(t, calls[0].Turns, len(sampleTranscript)+1)
	assert.Equal(t, adapter.RoleAssistant, calls[0].Turns[0].Role)
	assert.Equal(t, adapter.RoleUser, calls[0].Turns[1].Role)
	assert.Equal(t, "Had ramen with Mia, then a long run.", calls[0].Turns[1].Content)
	assert.Equal(t, extractionInstruction, calls[0].Turns[2].Content)
}

func TestExtract_GenerationErrorIsReturned(t *testing.T) {
	gen := adapter.NewScriptedGenerator(adapter.ScriptedReply{Err: errors.New("boom")})
	x := New(gen)

	result, err := x.Extract(context.Background(), sampleTranscript)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestExtract_ParseErrorIsReturned(t *testing.T) {
	gen := adapter.NewScriptedGenerator(adapter.ScriptedReply{Content: `{"events": [oops]}`})
	x := New(gen)

	_, err := x.Extract(context.Background(), sampleTranscript)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeExtraction))
}

func TestExtract_ProseOnlyIsEmpty(t *testing.T) {
	gen := adapter.NewScriptedGenerator(adapter.ScriptedReply{Content: "Sorry, nothing to extract."})
	x := New(gen)

	result, err := x.Extract(context.Background(), sampleTranscript)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
}
