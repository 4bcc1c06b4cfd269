package impexp

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

// document is the serialized form of a ledger snapshot. Amounts travel as
// decimal strings and dates as RFC 3339.
type document struct {
	Accounts   []accountRecord   `json:"accounts" yaml:"accounts"`
	Categories []categoryRecord  `json:"categories" yaml:"categories"`
	Operations []operationRecord `json:"operations" yaml:"operations"`
}

type accountRecord struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Balance string `json:"balance" yaml:"balance"`
}

type categoryRecord struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type operationRecord struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	AccountID   string `json:"account_id" yaml:"account_id"`
	CategoryID  string `json:"category_id" yaml:"category_id"`
	Amount      string `json:"amount" yaml:"amount"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func fromSnapshot(snap ledger.Snapshot) document {
	doc := document{
		Accounts:   make([]accountRecord, 0, len(snap.Accounts)),
		Categories: make([]categoryRecord, 0, len(snap.Categories)),
		Operations: make([]operationRecord, 0, len(snap.Operations)),
	}
	for _, acc := range snap.Accounts {
		doc.Accounts = append(doc.Accounts, accountRecord{ID: acc.ID, Name: acc.Name, Balance: acc.Balance.String()})
	}
	for _, cat := range snap.Categories {
		doc.Categories = append(doc.Categories, categoryRecord{ID: cat.ID, Name: cat.Name, Type: string(cat.Type)})
	}
	for _, op := range snap.Operations {
		doc.Operations = append(doc.Operations, operationRecord{
			ID:          op.ID,
			Type:        string(op.Type),
			AccountID:   op.AccountID,
			CategoryID:  op.CategoryID,
			Amount:      op.Amount.String(),
			Date:        op.Date.UTC().Format(time.RFC3339Nano),
			Description: op.Description,
		})
	}
	return doc
}

// toSnapshot parses the records. Balances are parsed for well-formedness
// only; the import recalculates them.
func (d document) toSnapshot() (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	for i, rec := range d.Accounts {
		balance := decimal.Zero
		if rec.Balance != "" {
			var err error
			if balance, err = decimal.NewFromString(rec.Balance); err != nil {
				return snap, shared.Invalid(shared.RuleMalformedInput, "account #%d: invalid balance %q", i+1, rec.Balance)
			}
		}
		snap.Accounts = append(snap.Accounts, &account.Account{ID: rec.ID, Name: rec.Name, Balance: balance})
	}

	for i, rec := range d.Categories {
		typ, err := shared.ParseOperationType(rec.Type)
		if err != nil {
			return snap, shared.Invalid(shared.RuleMalformedInput, "category #%d: %v", i+1, err)
		}
		snap.Categories = append(snap.Categories, &category.Category{ID: rec.ID, Name: rec.Name, Type: typ})
	}

	for i, rec := range d.Operations {
		op, err := rec.toOperation()
		if err != nil {
			return snap, shared.Invalid(shared.RuleMalformedInput, "operation #%d: %v", i+1, err)
		}
		snap.Operations = append(snap.Operations, op)
	}
	return snap, nil
}

func (r operationRecord) toOperation() (*operation.Operation, error) {
	typ, err := shared.ParseOperationType(r.Type)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return nil, err
	}
	return &operation.Operation{
		ID:          r.ID,
		Type:        typ,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Amount:      amount,
		Date:        date.UTC(),
		Description: r.Description,
	}, nil
}
