package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService   service.AccountService
	operationService service.OperationService
	logger           *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService, operationService service.OperationService) *AccountHandler {
	return &AccountHandler{
		accountService:   accountService,
		operationService: operationService,
		logger:           logger,
	}
}

// Create opens an account with a zero balance
func (h *AccountHandler) Create(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create account")
		return
	}
	RespondCreated(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) GetByID(c *gin.Context) {
	acc, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get account")
		return
	}
	RespondOK(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list accounts")
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		resp = append(resp, mapAccountToResponse(acc))
	}
	RespondOK(c, resp)
}

func (h *AccountHandler) Rename(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.RenameAccount(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to rename account")
		return
	}
	RespondOK(c, mapAccountToResponse(acc))
}

// Delete removes the account together with its operations
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete account")
		return
	}
	RespondNoContent(c)
}

// Recalculate rebuilds the balance from the account's operations
func (h *AccountHandler) Recalculate(c *gin.Context) {
	acc, err := h.operationService.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to recalculate balance")
		return
	}
	RespondOK(c, mapAccountToResponse(acc))
}
