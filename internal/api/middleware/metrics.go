package middleware

import (
	"time"

	"job-board-api/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records every request by its route pattern, not its raw path,
// so ids in URLs do not explode label cardinality.
func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
