package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/visits/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/visits/:id", "200"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/visits/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/visits/:id", "200"))
	assert.Equal(t, before+2, after)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `visits_http_requests_total{method="GET",path="/api/visits/:id",status="200"}`)
}
