package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics is Gin middleware recording request count and latency.
// The route pattern is used instead of the raw path so that /perfil and
// parameterized routes don't explode label cardinality.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown" // NoRoute handler
		}

		c.Next()

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
