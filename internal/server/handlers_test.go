package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/officialprakashkumarsingh/render/api/schemas"
	"github.com/officialprakashkumarsingh/render/internal/config"
)

// stubRunner records the queries and base URLs it was run with.
type stubRunner struct {
	mu       sync.Mutex
	answer   string
	err      error
	queries  []string
	baseURLs []string
}

func (r *stubRunner) Run(ctx context.Context, query, baseURL string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.baseURLs = append(r.baseURLs, baseURL)
	return r.answer, r.err
}

func newTestServer(t *testing.T, cfg config.ServerConfig, runner AgentRunner, screenshotDir string) *Server {
	t.Helper()
	if screenshotDir == "" {
		screenshotDir = t.TempDir()
	}
	return NewServer(cfg, runner, screenshotDir, zaptest.NewLogger(t))
}

func postAgent(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) schemas.AgentResponse {
	t.Helper()
	var resp schemas.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleAgent_Success(t *testing.T) {
	runner := &stubRunner{answer: "Paris"}
	srv := newTestServer(t, config.ServerConfig{}, runner, "")

	rec := postAgent(t, srv.Handler(), `{"query": "capital of France?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Paris", resp.Answer)
	assert.Empty(t, resp.Error)

	require.Len(t, runner.queries, 1)
	assert.Equal(t, "capital of France?", runner.queries[0])
	assert.Equal(t, "http://example.com", runner.baseURLs[0])
}

func TestHandleAgent_LoopFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("unrecognized command: \"I give up\"")}
	srv := newTestServer(t, config.ServerConfig{}, runner, "")

	rec := postAgent(t, srv.Handler(), `{"query": "impossible task"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Empty(t, resp.Answer)
	assert.Contains(t, resp.Error, "unrecognized command")
}

func TestHandleAgent_BadRequests(t *testing.T) {
	runner := &stubRunner{}
	srv := newTestServer(t, config.ServerConfig{}, runner, "")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query": `},
		{"empty query", `{"query": ""}`},
		{"whitespace query", `{"query": "   "}`},
		{"missing query", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAgent(t, srv.Handler(), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, runner.queries)
}

func TestHandleAgent_RateLimited(t *testing.T) {
	runner := &stubRunner{answer: "ok"}
	srv := newTestServer(t, config.ServerConfig{RateLimitRPS: 1, RateLimitBurst: 1}, runner, "")

	first := postAgent(t, srv.Handler(), `{"query": "one"}`)
	second := postAgent(t, srv.Handler(), `{"query": "two"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Len(t, runner.queries, 1)
}

func TestHandleAgent_PublicBaseURLOverride(t *testing.T) {
	runner := &stubRunner{answer: "ok"}
	srv := newTestServer(t, config.ServerConfig{PublicBaseURL: "https://agent.example.net/"}, runner, "")

	rec := postAgent(t, srv.Handler(), `{"query": "q"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, runner.baseURLs, 1)
	assert.Equal(t, "https://agent.example.net", runner.baseURLs[0])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, &stubRunner{}, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestScreenshotStaticServing(t *testing.T) {
	dir := t.TempDir()
	data := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.png"), data, 0o644))

	srv := newTestServer(t, config.ServerConfig{}, &stubRunner{}, dir)

	req := httptest.NewRequest(http.MethodGet, "/screenshots/shot.png", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, data, rec.Body.Bytes())
}

func TestScreenshotMissingFile(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{}, &stubRunner{}, "")

	req := httptest.NewRequest(http.MethodGet, "/screenshots/nothing.png", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
