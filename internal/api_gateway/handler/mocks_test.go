package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/impexp"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, name string) (*account.Account, error) {
	args := m.Called(ctx, name)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	accs, _ := args.Get(0).([]*account.Account)
	return accs, args.Error(1)
}

func (m *MockAccountService) RenameAccount(ctx context.Context, id, name string) (*account.Account, error) {
	args := m.Called(ctx, id, name)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, name string, typ shared.OperationType) (*category.Category, error) {
	args := m.Called(ctx, name, typ)
	cat, _ := args.Get(0).(*category.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	args := m.Called(ctx, id)
	cat, _ := args.Get(0).(*category.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]*category.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryService) RenameCategory(ctx context.Context, id, name string) (*category.Category, error) {
	args := m.Called(ctx, id, name)
	cat, _ := args.Get(0).(*category.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryService) ChangeCategoryType(ctx context.Context, id string, typ shared.OperationType) (*category.Category, error) {
	args := m.Called(ctx, id, typ)
	cat, _ := args.Get(0).(*category.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockOperationService struct {
	mock.Mock
}

func (m *MockOperationService) Record(ctx context.Context, req ledger.RecordRequest) (*operation.Operation, error) {
	args := m.Called(ctx, req)
	op, _ := args.Get(0).(*operation.Operation)
	return op, args.Error(1)
}

func (m *MockOperationService) Update(ctx context.Context, operationID string, patch ledger.OperationPatch) (*operation.Operation, error) {
	args := m.Called(ctx, operationID, patch)
	op, _ := args.Get(0).(*operation.Operation)
	return op, args.Error(1)
}

func (m *MockOperationService) Delete(ctx context.Context, operationID string) error {
	return m.Called(ctx, operationID).Error(0)
}

func (m *MockOperationService) Recalculate(ctx context.Context, accountID string) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Operation(ctx context.Context, id string) (*operation.Operation, error) {
	args := m.Called(ctx, id)
	op, _ := args.Get(0).(*operation.Operation)
	return op, args.Error(1)
}

func (m *MockReportService) Operations(ctx context.Context, accountID string, period ledger.Period) ([]*operation.Operation, error) {
	args := m.Called(ctx, accountID, period)
	ops, _ := args.Get(0).([]*operation.Operation)
	return ops, args.Error(1)
}

func (m *MockReportService) NetIncome(ctx context.Context, accountID string, period ledger.Period) (analytics.NetIncome, error) {
	args := m.Called(ctx, accountID, period)
	return args.Get(0).(analytics.NetIncome), args.Error(1)
}

func (m *MockReportService) SumByCategory(ctx context.Context, accountID string, period ledger.Period) ([]analytics.CategorySum, error) {
	args := m.Called(ctx, accountID, period)
	sums, _ := args.Get(0).([]analytics.CategorySum)
	return sums, args.Error(1)
}

func (m *MockReportService) Grouped(ctx context.Context, accountID string, period ledger.Period, strategy analytics.Strategy) ([]analytics.Group, error) {
	args := m.Called(ctx, accountID, period, strategy.Name)
	groups, _ := args.Get(0).([]analytics.Group)
	return groups, args.Error(1)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Export(ctx context.Context, w io.Writer, format impexp.Format) error {
	args := m.Called(ctx, w, format)
	return args.Error(0)
}

func (m *MockArchiveService) Import(ctx context.Context, r io.Reader, format impexp.Format) (ledger.ImportResult, error) {
	args := m.Called(ctx, r, format)
	return args.Get(0).(ledger.ImportResult), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testResponse mirrors Response with the data left raw
type testResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorInfo      `json:"error"`
	Meta  *MetaInfo       `json:"meta"`
}

func serve(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp testResponse
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func decodeData[T any](t *testing.T, resp testResponse) T {
	t.Helper()
	var v T
	if len(resp.Data) == 0 {
		return v
	}
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}
