package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/middleware"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// respondServiceError maps ledger errors to HTTP statuses. Anything that is
// not a ledger error is logged and reported as a 500.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	var (
		notFound  shared.ErrNotFound
		duplicate shared.ErrDuplicateKey
		invalid   shared.ErrValidationFailed
	)
	switch {
	case errors.As(err, &notFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, notFound.Error())
	case errors.As(err, &duplicate):
		RespondError(c, http.StatusConflict, CodeDuplicateKey, duplicate.Error())
	case errors.As(err, &invalid):
		logger.Warn(msg, "rule", invalid.Rule, "details", invalid.Details)
		RespondError(c, http.StatusUnprocessableEntity, string(invalid.Rule), invalid.Details)
	default:
		logger.Error(msg, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}
