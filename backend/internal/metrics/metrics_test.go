package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_ExposesMetrics(t *testing.T) {
	previous := Default()
	t.Cleanup(func() {
		SetRecorder(previous)
		recMu.Lock()
		handler = nil
		recMu.Unlock()
	})

	EnablePrometheus()
	require.NotNil(t, Handler())

	TimeStoreOp("insert_event")(true)
	TimeGeneration("extraction")(false)
	Default().IncExtractionOutcome(OutcomeParseError)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `moodgraph_store_ops_total{op="insert_event",success="true"} 1`)
	assert.Contains(t, text, `moodgraph_generation_calls_total{purpose="extraction",success="false"} 1`)
	assert.Contains(t, text, `moodgraph_extractions_total{outcome="parse_error"} 1`)
}

func TestNoopRecorderIsDefault(t *testing.T) {
	_, ok := Default().(*noopRecorder)
	if !ok {
		t.Skip("a recorder was installed by another test")
	}
	assert.NotPanics(t, func() { TimeStoreOp("list_events")(true) })
}
