package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

func newCategoryRouter(categories *MockCategoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCategoryHandler(newTestLogger(), categories)
	r := gin.New()
	r.POST("/categories", h.Create)
	r.GET("/categories", h.List)
	r.GET("/categories/:id", h.GetByID)
	r.PATCH("/categories/:id", h.Rename)
	r.PUT("/categories/:id/type", h.ChangeType)
	r.DELETE("/categories/:id", h.Delete)
	return r
}

func TestCategoryHandler(t *testing.T) {
	t.Run("CreateParsesTypeCaseInsensitively", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("CreateCategory", mock.Anything, "Food", shared.OperationTypeExpense).
			Return(&category.Category{ID: "c1", Name: "Food", Type: shared.OperationTypeExpense}, nil).Once()
		router := newCategoryRouter(categories)

		rr, resp := serve(t, router, http.MethodPost, "/categories", `{"name": "Food", "type": "expense"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, CategoryResponse{ID: "c1", Name: "Food", Type: "EXPENSE"}, decodeData[CategoryResponse](t, resp))
		categories.AssertExpectations(t)
	})

	t.Run("CreateRejectsUnknownType", func(t *testing.T) {
		categories := new(MockCategoryService)
		router := newCategoryRouter(categories)

		rr, resp := serve(t, router, http.MethodPost, "/categories", `{"name": "Gifts", "type": "TRANSFER"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, string(shared.RuleOperationType), resp.Error.Code)
		categories.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ChangeTypeInUse", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("ChangeCategoryType", mock.Anything, "c1", shared.OperationTypeIncome).
			Return(nil, shared.Invalid(shared.RuleCategoryType, "category c1 is used by EXPENSE operations")).Once()
		router := newCategoryRouter(categories)

		rr, resp := serve(t, router, http.MethodPut, "/categories/c1/type", `{"type": "INCOME"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, string(shared.RuleCategoryType), resp.Error.Code)
	})

	t.Run("DeleteInUse", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("DeleteCategory", mock.Anything, "c1").Return(shared.Invalid(shared.RuleCategoryInUse, "in use")).Once()
		router := newCategoryRouter(categories)

		rr, resp := serve(t, router, http.MethodDelete, "/categories/c1", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, string(shared.RuleCategoryInUse), resp.Error.Code)
	})

	t.Run("ListAndRename", func(t *testing.T) {
		categories := new(MockCategoryService)
		categories.On("ListCategories", mock.Anything).Return([]*category.Category{
			{ID: "c1", Name: "Food", Type: shared.OperationTypeExpense},
		}, nil).Once()
		categories.On("RenameCategory", mock.Anything, "c1", "Groceries").
			Return(&category.Category{ID: "c1", Name: "Groceries", Type: shared.OperationTypeExpense}, nil).Once()
		categories.On("GetCategory", mock.Anything, "zz").Return(nil, shared.ErrNotFound{Entity: shared.EntityCategory, ID: "zz"}).Once()
		router := newCategoryRouter(categories)

		rr, resp := serve(t, router, http.MethodGet, "/categories", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decodeData[[]CategoryResponse](t, resp), 1)

		rr, resp = serve(t, router, http.MethodPatch, "/categories/c1", `{"name": "Groceries"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Groceries", decodeData[CategoryResponse](t, resp).Name)

		rr, _ = serve(t, router, http.MethodGet, "/categories/zz", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		categories.AssertExpectations(t)
	})
}
