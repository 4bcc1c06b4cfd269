package service

import (
	"context"
	"io"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/impexp"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// AccountService manages accounts
type AccountService interface {
	CreateAccount(ctx context.Context, name string) (*account.Account, error)
	// GetAccount returns shared.ErrNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id string) (*account.Account, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)
	RenameAccount(ctx context.Context, id, name string) (*account.Account, error)
	// DeleteAccount also removes every operation of the account
	DeleteAccount(ctx context.Context, id string) error
}

// CategoryService manages categories
type CategoryService interface {
	CreateCategory(ctx context.Context, name string, typ shared.OperationType) (*category.Category, error)
	GetCategory(ctx context.Context, id string) (*category.Category, error)
	ListCategories(ctx context.Context) ([]*category.Category, error)
	RenameCategory(ctx context.Context, id, name string) (*category.Category, error)
	// ChangeCategoryType fails while operations of the other type reference the category
	ChangeCategoryType(ctx context.Context, id string, typ shared.OperationType) (*category.Category, error)
	// DeleteCategory fails while any operation references the category
	DeleteCategory(ctx context.Context, id string) error
}

// OperationService mutates operations and keeps balances in step
type OperationService interface {
	Record(ctx context.Context, req ledger.RecordRequest) (*operation.Operation, error)
	Update(ctx context.Context, operationID string, patch ledger.OperationPatch) (*operation.Operation, error)
	Delete(ctx context.Context, operationID string) error
	Recalculate(ctx context.Context, accountID string) (*account.Account, error)
}

// ReportService answers read-only questions about an account
type ReportService interface {
	Operation(ctx context.Context, id string) (*operation.Operation, error)
	Operations(ctx context.Context, accountID string, period ledger.Period) ([]*operation.Operation, error)
	NetIncome(ctx context.Context, accountID string, period ledger.Period) (analytics.NetIncome, error)
	SumByCategory(ctx context.Context, accountID string, period ledger.Period) ([]analytics.CategorySum, error)
	Grouped(ctx context.Context, accountID string, period ledger.Period, strategy analytics.Strategy) ([]analytics.Group, error)
}

// ArchiveService exports and imports whole ledgers
type ArchiveService interface {
	Export(ctx context.Context, w io.Writer, format impexp.Format) error
	Import(ctx context.Context, r io.Reader, format impexp.Format) (ledger.ImportResult, error)
}

// Services bundles everything the HTTP adapter needs
type Services struct {
	Accounts   AccountService
	Categories CategoryService
	Operations OperationService
	Reports    ReportService
	Archive    ArchiveService
}
