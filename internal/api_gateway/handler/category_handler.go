package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *slog.Logger
}

func NewCategoryHandler(logger *slog.Logger, categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	typ, err := shared.ParseOperationType(req.Type)
	if err != nil {
		respondServiceError(c, h.logger, err, "Invalid category type")
		return
	}

	cat, err := h.categoryService.CreateCategory(c.Request.Context(), req.Name, typ)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create category")
		return
	}
	RespondCreated(c, mapCategoryToResponse(cat))
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	cat, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get category")
		return
	}
	RespondOK(c, mapCategoryToResponse(cat))
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list categories")
		return
	}

	resp := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		resp = append(resp, mapCategoryToResponse(cat))
	}
	RespondOK(c, resp)
}

func (h *CategoryHandler) Rename(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cat, err := h.categoryService.RenameCategory(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to rename category")
		return
	}
	RespondOK(c, mapCategoryToResponse(cat))
}

// ChangeType is rejected with 422 while operations of the old type use the category
func (h *CategoryHandler) ChangeType(c *gin.Context) {
	var req CategoryTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	typ, err := shared.ParseOperationType(req.Type)
	if err != nil {
		respondServiceError(c, h.logger, err, "Invalid category type")
		return
	}

	cat, err := h.categoryService.ChangeCategoryType(c.Request.Context(), c.Param("id"), typ)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to change category type")
		return
	}
	RespondOK(c, mapCategoryToResponse(cat))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete category")
		return
	}
	RespondNoContent(c)
}
