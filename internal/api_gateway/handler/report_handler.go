package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// ReportHandler serves per-account analytics
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

func (h *ReportHandler) period(c *gin.Context) (ledger.Period, bool) {
	var params PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return ledger.Period{}, false
	}
	period, err := params.toPeriod()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return ledger.Period{}, false
	}
	return period, true
}

func (h *ReportHandler) NetIncome(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}

	summary, err := h.reportService.NetIncome(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to compute net income")
		return
	}
	RespondOK(c, summary)
}

// ByCategory returns unsigned totals per category, largest first
func (h *ReportHandler) ByCategory(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}

	sums, err := h.reportService.SumByCategory(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to sum by category")
		return
	}
	RespondOK(c, sums)
}

// Grouped returns signed totals per key of the strategy named by ?by=
func (h *ReportHandler) Grouped(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	strategy, found := analytics.StrategyByName(c.DefaultQuery("by", analytics.ByCategory.Name))
	if !found {
		RespondBadRequest(c, "Unknown grouping "+c.Query("by")+", expected category, day or type")
		return
	}

	groups, err := h.reportService.Grouped(c.Request.Context(), c.Param("id"), period, strategy)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to group operations")
		return
	}
	RespondOK(c, groups)
}
