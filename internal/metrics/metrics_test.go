package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCacheHit("query")
	m.RecordCacheMiss("feed")
	m.RecordSourceAttempt("feed", "success")
	m.RecordRetrieval(time.Second)
}

func TestMetricsScrape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("gridstats")
	m.RecordCacheHit("query")
	m.RecordSourceAttempt("feed", "success")
	m.RecordRetrieval(250 * time.Millisecond)

	engine := gin.New()
	engine.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `gridstats_cache_hits_total{tier="query"} 1`)
	assert.Contains(t, body, `gridstats_source_attempts_total{outcome="success",source="feed"} 1`)
	assert.Contains(t, body, "gridstats_retrieval_duration_seconds_count 1")
}

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("gridstats")

	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `gridstats_http_requests_total{method="GET",path="/ping",status="200"} 1`)
}
