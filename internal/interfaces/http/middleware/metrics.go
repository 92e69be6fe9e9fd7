package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/phimark/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request count, latency and in-flight requests.  Requests
// are labelled by route template, or "unmatched" when no route matched, to
// keep label cardinality bounded.
func Metrics(m *prometheus.MarkupMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		inFlight := m.HTTPInFlight.WithLabelValues()
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
