package account

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// Account is a named balance holder. Balance always equals the signed sum
// of the operations referencing the account.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccount creates an account with a zero balance
func NewAccount(id, name string) (*Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "account id cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "account name cannot be empty")
	}

	return &Account{
		ID:      id,
		Name:    name,
		Balance: decimal.Zero,
	}, nil
}

// Rename changes the display name
func (a *Account) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.Invalid(shared.RuleRequiredField, "account name cannot be empty")
	}
	a.Name = name
	return nil
}

// ApplyDelta adds a signed amount to the balance
func (a *Account) ApplyDelta(delta decimal.Decimal) {
	a.Balance = a.Balance.Add(delta)
}

// SetBalance overwrites the balance with a recomputed value
func (a *Account) SetBalance(balance decimal.Decimal) {
	a.Balance = balance
}

func (a *Account) Key() string { return a.ID }

func (a *Account) Clone() *Account {
	c := *a
	return &c
}
