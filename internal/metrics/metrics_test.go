package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRequest(http.MethodGet, "/api/diary/{user_id}", 200, 10*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "/api/diary/{user_id}", 200, 20*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "/api/diary/{user_id}", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/api/diary/{user_id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/api/diary/{user_id}", "404")))
}

func TestCollector_RecordRecommendation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecommendation(OutcomeSuccess, time.Second)
	c.RecordRecommendation(OutcomeFailure, time.Second)
	c.RecordRecommendation(OutcomeUnavailable, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.recommendations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recommendations.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recommendations.WithLabelValues(OutcomeUnavailable)))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRateLimited("/api/recommendations/{user_id}")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "healthd_rate_limited_total")
}
