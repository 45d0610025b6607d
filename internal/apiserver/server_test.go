package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasecopilot/rcagent/internal/agent"
)

// fakeRunner scripts the agent behind the API.
type fakeRunner struct {
	resp *agent.Response
	err  error
	seen []string
}

func (f *fakeRunner) Run(_ context.Context, query string) (*agent.Response, error) {
	f.seen = append(f.seen, query)
	return f.resp, f.err
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := New(&fakeRunner{})

	for _, path := range []string{"/", "/health"} {
		rec := doRequest(t, srv.Handler(), http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var health HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "Release Copilot API", health.Service)
	}
}

func TestChat(t *testing.T) {
	runner := &fakeRunner{resp: &agent.Response{Text: "The payments pipeline in prod succeeded."}}
	srv := New(runner)

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat",
		`{"message": "What's the status of the payments service in prod?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The payments pipeline in prod succeeded.", resp.Response)
	assert.NotEmpty(t, resp.ConversationID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "assistant", resp.Messages[1].Role)

	require.Len(t, runner.seen, 1)
	assert.Equal(t, "What's the status of the payments service in prod?", runner.seen[0])
}

func TestChatKeepsConversationID(t *testing.T) {
	srv := New(&fakeRunner{resp: &agent.Response{Text: "ok"}})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat",
		`{"message": "hi", "conversation_id": "conv-42"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conv-42", resp.ConversationID)
}

func TestChatEmptyMessage(t *testing.T) {
	srv := New(&fakeRunner{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat", `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatInvalidBody(t *testing.T) {
	srv := New(&fakeRunner{})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRunnerError(t *testing.T) {
	srv := New(&fakeRunner{err: errors.New("completion: connection refused")})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat", `{"message": "hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChatEmptyResponseFallback(t *testing.T) {
	srv := New(&fakeRunner{resp: &agent.Response{}})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/chat", `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "I'm sorry, I couldn't generate a response.", resp.Response)
}

func TestExamples(t *testing.T) {
	srv := New(&fakeRunner{})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/examples", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]struct {
		Query       string `json:"query"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["examples"], 4)
	assert.NotEmpty(t, body["examples"][0].Query)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := New(&fakeRunner{})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
