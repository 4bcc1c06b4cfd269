package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/handler"
	"github.com/LeskaProgrammer/KPO/internal/api_gateway/middleware"
	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, services service.Services) {
	r.Use(middleware.Recovery(logger, handler.RespondInternalError))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	accountHandler := handler.NewAccountHandler(logger, services.Accounts, services.Operations)
	categoryHandler := handler.NewCategoryHandler(logger, services.Categories)
	operationHandler := handler.NewOperationHandler(logger, services.Operations, services.Reports)
	reportHandler := handler.NewReportHandler(logger, services.Reports)
	archiveHandler := handler.NewArchiveHandler(logger, services.Archive)

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.PATCH("/:id", accountHandler.Rename)
			accounts.DELETE("/:id", accountHandler.Delete)
			accounts.POST("/:id/recalculate", accountHandler.Recalculate)
			accounts.GET("/:id/operations", operationHandler.ListByAccount)

			reports := accounts.Group("/:id/reports")
			{
				reports.GET("/net-income", reportHandler.NetIncome)
				reports.GET("/by-category", reportHandler.ByCategory)
				reports.GET("/grouped", reportHandler.Grouped)
			}
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", categoryHandler.Create)
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.GetByID)
			categories.PATCH("/:id", categoryHandler.Rename)
			categories.PUT("/:id/type", categoryHandler.ChangeType)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		operations := v1.Group("/operations")
		{
			operations.POST("", operationHandler.Record)
			operations.GET("/:id", operationHandler.GetByID)
			operations.PATCH("/:id", operationHandler.Patch)
			operations.DELETE("/:id", operationHandler.Delete)
		}

		v1.GET("/export", archiveHandler.Export)
		v1.POST("/import", archiveHandler.Import)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
