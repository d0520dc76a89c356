package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/health-diary/internal/config"
)

type cannedGenerator struct{ answer string }

func (g cannedGenerator) Generate(context.Context, string) (string, error) {
	return g.answer, nil
}

func newTestServer(t *testing.T, cfg config.Server) *Server {
	t.Helper()
	cfg.DBPath = ":memory:"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New(cfg, logger, cannedGenerator{answer: "Drink water."})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, target, rd))
	return rr
}

func TestServer_EndToEnd(t *testing.T) {
	s := newTestServer(t, config.Server{CORSAllowedOrigin: "*", RecommendPerMinute: 6, RecommendBurst: 3})

	rr := serve(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))

	rr = serve(s, http.MethodPost, "/api/auth/register", `{"user_id":"alice","age":30,"gender":"female","allergies":[],"medical_conditions":[]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(s, http.MethodPost, "/api/diary/alice", `{"date":"2024-05-01","meals":["oats"],"conditions":[],"activities":[],"notes":""}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(s, http.MethodPost, "/api/recommendations/alice", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Drink water.")

	rr = serve(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_RecommendationsAreRateLimited(t *testing.T) {
	s := newTestServer(t, config.Server{RecommendPerMinute: 1, RecommendBurst: 1})
	rr := serve(s, http.MethodPost, "/api/auth/register", `{"user_id":"alice","age":30}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, http.StatusOK, serve(s, http.MethodPost, "/api/recommendations/alice", "").Code)

	rr = serve(s, http.MethodPost, "/api/recommendations/alice", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "detail")

	// History is not limited.
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/recommendations/alice/history", "").Code)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, config.Server{})
	serve(s, http.MethodGet, "/api/users/ghost", "")

	rr := serve(s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "healthd_http_requests_total")
	assert.Contains(t, body, `route="/api/users/{user_id}"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	cfg := config.Server{Port: 0, DBPath: ":memory:", ShutdownTimeout: time.Second}
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
