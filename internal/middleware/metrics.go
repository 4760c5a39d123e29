package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/observability"
)

// Metrics records request counts and latencies by route template
func Metrics(collector *observability.HTTPCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		collector.Requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		collector.Durations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
