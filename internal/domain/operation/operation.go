package operation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// Operation moves money against one account. Amount is stored unsigned;
// the sign comes from Type.
type Operation struct {
	ID          string               `json:"id"`
	Type        shared.OperationType `json:"type"`
	AccountID   string               `json:"account_id"`
	CategoryID  string               `json:"category_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Date        time.Time            `json:"date"`
	Description string               `json:"description,omitempty"`
}

// NewOperation creates an operation after checking its structural fields.
// Date window and category compatibility are ledger rules checked by the caller.
func NewOperation(id, accountID, categoryID string, typ shared.OperationType, amount decimal.Decimal, date time.Time, description string) (*Operation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "operation id cannot be empty")
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "account id cannot be empty")
	}
	if strings.TrimSpace(categoryID) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "category id cannot be empty")
	}
	if !typ.Valid() {
		return nil, shared.Invalid(shared.RuleOperationType, "unknown operation type %q", typ)
	}
	if amount.IsNegative() {
		return nil, shared.Invalid(shared.RuleAmountNonNegative, "amount %s is negative", amount)
	}

	return &Operation{
		ID:          id,
		Type:        typ,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Date:        date,
		Description: description,
	}, nil
}

// SignedAmount is +Amount for income and -Amount for expense
func (o *Operation) SignedAmount() decimal.Decimal {
	if o.Type == shared.OperationTypeExpense {
		return o.Amount.Neg()
	}
	return o.Amount
}

func (o *Operation) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.Invalid(shared.RuleAmountNonNegative, "amount %s is negative", amount)
	}
	o.Amount = amount
	return nil
}

func (o *Operation) SetDate(date time.Time) {
	o.Date = date
}

func (o *Operation) SetDescription(description string) {
	o.Description = description
}

func (o *Operation) SetCategory(categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return shared.Invalid(shared.RuleRequiredField, "category id cannot be empty")
	}
	o.CategoryID = categoryID
	return nil
}

func (o *Operation) SetType(typ shared.OperationType) error {
	if !typ.Valid() {
		return shared.Invalid(shared.RuleOperationType, "unknown operation type %q", typ)
	}
	o.Type = typ
	return nil
}

// InPeriod reports whether the date falls in [from, to]; a zero bound is open
func (o *Operation) InPeriod(from, to time.Time) bool {
	if !from.IsZero() && o.Date.Before(from) {
		return false
	}
	if !to.IsZero() && o.Date.After(to) {
		return false
	}
	return true
}

func (o *Operation) Key() string { return o.ID }

func (o *Operation) Clone() *Operation {
	c := *o
	return &c
}
