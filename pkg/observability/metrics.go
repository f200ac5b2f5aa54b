package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler serves the scrape endpoint, or 503 when telemetry is disabled
func PrometheusHandler(t *Telemetry) gin.HandlerFunc {
	if t == nil || t.Handler == nil {
		return func(c *gin.Context) {
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
	return gin.WrapH(t.Handler)
}
