package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
)

// Recovery turns a panic in a later handler into a logged stack trace and
// whatever response respond writes. The chain is aborted either way.
func Recovery(logger *slog.Logger, respond gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("Panic recovered",
				"panic", r,
				"stack", string(debug.Stack()),
				"method", c.Request.Method,
				"route", c.FullPath(),
				"correlation_id", journal.CorrelationID(c.Request.Context()),
			)
			c.Abort()
			respond(c)
		}()

		c.Next()
	}
}
