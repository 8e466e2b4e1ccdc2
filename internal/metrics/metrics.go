package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visits",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "visits",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Ingestion metrics
	IngestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visits",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Source rows processed by outcome (loaded, degraded, dropped, skipped)",
	}, []string{"outcome"})

	IngestChunksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "visits",
		Subsystem: "ingest",
		Name:      "chunks_skipped_total",
		Help:      "Chunks discarded because normalization failed unexpectedly",
	})

	IngestLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visits",
		Subsystem: "ingest",
		Name:      "loads_total",
		Help:      "Bulk loads by result (ok, partial, failed)",
	}, []string{"result"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "visits",
		Subsystem: "ingest",
		Name:      "load_duration_seconds",
		Help:      "Duration of bulk loads",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	RecordsPublished = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "visits",
		Subsystem: "store",
		Name:      "records",
		Help:      "Records in the currently published record set",
	})
)

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns a gin handler serving the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
