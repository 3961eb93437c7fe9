package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shiftwise/internal/access"
	"shiftwise/internal/metrics"
	"shiftwise/pkg/flash"
)

// AccessGate evaluates req against the caller and, on denial, queues the
// decision's message and redirects to its fallback route.
func AccessGate(req access.Requirement, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := access.Evaluate(IdentityFrom(c), req)
		if decision.Allowed {
			c.Next()
			return
		}

		if decision.ClearMessages {
			flash.Replace(c, flash.LevelWarning, decision.Message)
		} else {
			flash.Warning(c, decision.Message)
		}
		if m != nil {
			m.AccessDenied(decision.Redirect)
		}
		c.Redirect(http.StatusFound, decision.Redirect)
		c.Abort()
	}
}
