package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodgraph/backend/internal/adapter"
	"moodgraph/backend/internal/agent"
	"moodgraph/backend/internal/extractor"
	"moodgraph/backend/internal/graph"
	"moodgraph/backend/internal/store/testutil"
)

const extractionJSON = `{"entities":[{"id":"person_sarah","type":"person","name":"Sarah"}],` +
	`"events":[{"id":"ev1","summary":"Lunch with Sarah","domains":["Friends","Work Life"],"related_entities":["person_sarah"]}],` +
	`"relationships":[{"from_id":"ev1","to_id":"person_sarah","relationship_type":"WITH_PERSON","strength":4}]}`

func newTestRouter(t *testing.T, replies ...adapter.ScriptedReply) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := testutil.Store(t)
	gen := adapter.NewScriptedGenerator(replies...)
	orch := agent.NewOrchestrator(agent.Dependencies{
		LLM:       gen,
		Extractor: extractor.New(gen),
		Writer:    graph.NewWriter(s),
		Assembler: graph.NewAssembler(s),
		Retriever: graph.NewRetriever(s),
		Store:     s,
	})
	return newRouter(orch, zap.NewNop())
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, response := doJSON(t, router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t, adapter.ScriptedReply{Content: "That sounds lovely!"})

	w, response := doJSON(t, router, "POST", "/api/users/u1/chat",
		`{"message":"Had lunch with Sarah","history":[{"sender":"assistant","content":"How was your day?"}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "That sounds lovely!", response["reply"])
	assert.Equal(t, false, response["fallback"])
}

func TestChatEndpoint_FallsBackWhenGenerationFails(t *testing.T) {
	router := newTestRouter(t)

	w, response := doJSON(t, router, "POST", "/api/users/u1/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["fallback"])
	assert.NotEmpty(t, response["reply"])
}

func TestChatEndpoint_InvalidRequest(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, "POST", "/api/users/u1/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, "POST", "/api/users/u1/chat", `{"message":"hi","history":[{"sender":"robot","content":"beep"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseEndpoint_InvalidDate(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, "POST", "/api/users/u1/conversations/close", `{"date":"May 1st","messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseEndpoint_ExtractionFailureStillCloses(t *testing.T) {
	router := newTestRouter(t, adapter.ScriptedReply{Content: `{"events": [broken}`})

	w, response := doJSON(t, router, "POST", "/api/users/u1/conversations/close",
		`{"date":"2024-05-01","messages":[{"sender":"assistant","content":"Hi"},{"sender":"user","content":"Long day"}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["closed"])
	assert.Equal(t, agent.StatusFailed, response["extractionStatus"])
}

func TestJournalLifecycle(t *testing.T) {
	router := newTestRouter(t, adapter.ScriptedReply{Content: extractionJSON})

	w, response := doJSON(t, router, "POST", "/api/users/u1/conversations/close",
		`{"date":"2024-05-01","messages":[{"sender":"assistant","content":"How was today?"},{"sender":"user","content":"Lunch with Sarah at work."}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, agent.StatusExtracted, response["extractionStatus"])
	assert.Equal(t, float64(1), response["events"])

	// Graph: 7 domains + 1 event + 1 entity; 1 stored edge + 2 BELONGS_TO
	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/users/u1/graph", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var g graph.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Equal(t, 1, g.EventCount)
	assert.Equal(t, 1, g.EntityCount)
	assert.Len(t, g.Nodes, 9)
	assert.Len(t, g.Edges, 3)
	assert.Equal(t, "WITH PERSON", g.Edges[0].Type)

	w, response = doJSON(t, router, "GET", "/api/users/u1/context?q=sarah", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, response["context"], "Lunch with Sarah (2024-05-01)")

	var eventID string
	for _, n := range g.Nodes {
		if n.Kind == graph.NodeKindEvent {
			eventID = n.ID[len("event:"):]
		}
	}
	require.NotEmpty(t, eventID)

	w, response = doJSON(t, router, "DELETE", "/api/users/u1/events/"+eventID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["relationshipsDeleted"])

	w, _ = doJSON(t, router, "DELETE", "/api/users/u1/events/"+eventID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, "DELETE", "/api/users/u1/events/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = doJSON(t, router, "DELETE", "/api/users/u1/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["deleted"])
}
