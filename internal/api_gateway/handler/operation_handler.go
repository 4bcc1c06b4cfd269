package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// OperationHandler handles HTTP requests for operations
type OperationHandler struct {
	operationService service.OperationService
	reportService    service.ReportService
	logger           *slog.Logger
}

func NewOperationHandler(logger *slog.Logger, operationService service.OperationService, reportService service.ReportService) *OperationHandler {
	return &OperationHandler{
		operationService: operationService,
		reportService:    reportService,
		logger:           logger,
	}
}

// Record adds an operation and applies it to the account balance
func (h *OperationHandler) Record(c *gin.Context) {
	var req RecordOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	typ, err := shared.ParseOperationType(req.Type)
	if err != nil {
		respondServiceError(c, h.logger, err, "Invalid operation type")
		return
	}

	op, err := h.operationService.Record(c.Request.Context(), ledger.RecordRequest{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        typ,
		Amount:      amount,
		Date:        *req.Date,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to record operation")
		return
	}
	RespondCreated(c, mapOperationToResponse(op))
}

func (h *OperationHandler) GetByID(c *gin.Context) {
	op, err := h.reportService.Operation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get operation")
		return
	}
	RespondOK(c, mapOperationToResponse(op))
}

// Patch edits an operation; the balance moves by the difference
func (h *OperationHandler) Patch(c *gin.Context) {
	var req PatchOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patch := ledger.OperationPatch{
		Date:        req.Date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
		patch.Amount = &amount
	}
	if req.Type != nil {
		typ, err := shared.ParseOperationType(*req.Type)
		if err != nil {
			respondServiceError(c, h.logger, err, "Invalid operation type")
			return
		}
		patch.Type = &typ
	}

	op, err := h.operationService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to update operation")
		return
	}
	RespondOK(c, mapOperationToResponse(op))
}

func (h *OperationHandler) Delete(c *gin.Context) {
	if err := h.operationService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete operation")
		return
	}
	RespondNoContent(c)
}

// ListByAccount pages through an account's operations, oldest first
func (h *OperationHandler) ListByAccount(c *gin.Context) {
	var params PeriodParams
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	period, err := params.toPeriod()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	ops, err := h.reportService.Operations(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list operations")
		return
	}

	start := min((pagination.Page-1)*pagination.PerPage, len(ops))
	end := min(start+pagination.PerPage, len(ops))
	RespondPage(c, mapOperations(ops[start:end]), pagination.Page, pagination.PerPage, len(ops))
}
