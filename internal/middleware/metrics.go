// Package middleware holds gin middleware bound to application services.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records the duration and status of every request against its route template.
// Requests that match no route share one label so probes for random paths cannot grow
// the series count. Paths in skip are not recorded.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
