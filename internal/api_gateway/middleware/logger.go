package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/domain/journal"
)

// Logger writes one line per request once it has been served. Requests are
// identified by their route template, so /accounts/:id groups every account;
// requests no route matched carry their raw path instead.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"correlation_id", journal.CorrelationID(c.Request.Context()),
		}
		if c.FullPath() == "" {
			attrs = append(attrs, "path", c.Request.URL.Path)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", attrs...)
		case status >= 400:
			logger.Warn("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	}
}
