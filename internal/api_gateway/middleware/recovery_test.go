package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/handler"
	"github.com/LeskaProgrammer/KPO/internal/api_gateway/middleware"
)

func newRecoveryRouter(logs *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelError}))

	router := gin.New()
	router.Use(middleware.Recovery(logger, handler.RespondInternalError))
	router.Use(middleware.CorrelationID())
	return router
}

func TestRecovery(t *testing.T) {
	t.Run("AnswersWithEnvelopeAndCorrelationID", func(t *testing.T) {
		var logs bytes.Buffer
		router := newRecoveryRouter(&logs)
		router.GET("/accounts/:id", func(*gin.Context) { panic("nil balance") })

		req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
		req.Header.Set(middleware.CorrelationIDHeader, "corr-42")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var resp handler.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, handler.CodeInternalServer, resp.Error.Code)
		assert.Equal(t, "corr-42", resp.CorrelationID)
		assert.Nil(t, resp.Data)

		out := logs.String()
		assert.Contains(t, out, `"msg":"Panic recovered"`)
		assert.Contains(t, out, `"panic":"nil balance"`)
		assert.Contains(t, out, `"route":"/accounts/:id"`)
		assert.Contains(t, out, `"correlation_id":"corr-42"`)
		assert.Contains(t, out, `"stack":`)
	})

	t.Run("NoPanicNoEffect", func(t *testing.T) {
		var logs bytes.Buffer
		router := newRecoveryRouter(&logs)
		router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
		assert.Empty(t, logs.String())
	})
}
