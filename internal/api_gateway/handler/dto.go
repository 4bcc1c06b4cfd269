package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// NameRequest creates or renames an account or category
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CategoryTypeRequest changes the type of a category
type CategoryTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// RecordOperationRequest represents a request to record a new operation.
// Amount is a decimal string.
type RecordOperationRequest struct {
	AccountID   string     `json:"account_id" binding:"required"`
	CategoryID  string     `json:"category_id" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Amount      string     `json:"amount" binding:"required"`
	Date        *time.Time `json:"date" binding:"required"`
	Description string     `json:"description,omitempty"`
}

// PatchOperationRequest lists the fields to change; omitted fields are kept
type PatchOperationRequest struct {
	Amount      *string    `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Type        *string    `json:"type,omitempty"`
}

// OperationResponse represents an operation in API responses
type OperationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AccountID   string `json:"account_id"`
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// PeriodParams bounds report and listing queries. Both bounds are optional
// and accept RFC 3339 timestamps or plain dates.
type PeriodParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=50" binding:"min=1,max=500"`
}

const dateLayout = "2006-01-02"

// toPeriod parses the bounds. A plain To date includes the whole day.
func (p PeriodParams) toPeriod() (ledger.Period, error) {
	var period ledger.Period
	var err error
	if p.From != "" {
		if period.From, err = parseBound(p.From, false); err != nil {
			return period, fmt.Errorf("invalid from: %w", err)
		}
	}
	if p.To != "" {
		if period.To, err = parseBound(p.To, true); err != nil {
			return period, fmt.Errorf("invalid to: %w", err)
		}
	}
	if !period.From.IsZero() && !period.To.IsZero() && period.To.Before(period.From) {
		return period, fmt.Errorf("to is before from")
	}
	return period, nil
}

func parseBound(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	day, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or %s, got %q", dateLayout, s)
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{ID: acc.ID, Name: acc.Name, Balance: acc.Balance.String()}
}

func mapCategoryToResponse(cat *category.Category) CategoryResponse {
	return CategoryResponse{ID: cat.ID, Name: cat.Name, Type: string(cat.Type)}
}

func mapOperationToResponse(op *operation.Operation) OperationResponse {
	return OperationResponse{
		ID:          op.ID,
		Type:        string(op.Type),
		AccountID:   op.AccountID,
		CategoryID:  op.CategoryID,
		Amount:      op.Amount.String(),
		Date:        op.Date.UTC().Format(time.RFC3339),
		Description: op.Description,
	}
}

func mapOperations(ops []*operation.Operation) []OperationResponse {
	resp := make([]OperationResponse, 0, len(ops))
	for _, op := range ops {
		resp = append(resp, mapOperationToResponse(op))
	}
	return resp
}
