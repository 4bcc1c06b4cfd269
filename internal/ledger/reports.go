package ledger

import (
	"context"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Reports answers read-only questions about one account. Each call reads
// the stores under their read locks, so it never sees an operation without
// its balance effect.
type Reports struct {
	stores     Stores
	aggregator analytics.Aggregator
}

func NewReports(stores Stores, aggregator analytics.Aggregator) *Reports {
	return &Reports{stores: stores, aggregator: aggregator}
}

type accountView struct {
	operations []*operation.Operation
	names      map[string]string
}

func (r *Reports) view(ctx context.Context, accountID string, period Period) (*accountView, error) {
	var v accountView
	err := r.stores.Accounts.Read(func(accounts store.Reader[*account.Account]) error {
		return r.stores.Categories.Read(func(categories store.Reader[*category.Category]) error {
			return r.stores.Operations.Read(func(operations store.Reader[*operation.Operation]) error {
				if _, err := getAccount(ctx, accounts, accountID); err != nil {
					return err
				}
				ops, err := OperationsByAccountAndPeriod(ctx, operations, accountID, period)
				if err != nil {
					return err
				}
				cats, err := categories.GetAll(ctx)
				if err != nil {
					return err
				}

				v.operations = ops
				v.names = make(map[string]string, len(cats))
				for _, cat := range cats {
					v.names[cat.ID] = cat.Name
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Operations lists the account's operations in the period, ordered by date
func (r *Reports) Operations(ctx context.Context, accountID string, period Period) ([]*operation.Operation, error) {
	v, err := r.view(ctx, accountID, period)
	if err != nil {
		return nil, err
	}
	return v.operations, nil
}

func (r *Reports) Operation(ctx context.Context, id string) (*operation.Operation, error) {
	return getOperation(ctx, r.stores.Operations, id)
}

func (r *Reports) NetIncome(ctx context.Context, accountID string, period Period) (analytics.NetIncome, error) {
	v, err := r.view(ctx, accountID, period)
	if err != nil {
		return analytics.NetIncome{}, err
	}
	return r.aggregator.NetIncome(v.operations), nil
}

func (r *Reports) SumByCategory(ctx context.Context, accountID string, period Period) ([]analytics.CategorySum, error) {
	v, err := r.view(ctx, accountID, period)
	if err != nil {
		return nil, err
	}
	return r.aggregator.SumByCategory(v.operations, func(id string) string { return v.names[id] }), nil
}

func (r *Reports) Grouped(ctx context.Context, accountID string, period Period, strategy analytics.Strategy) ([]analytics.Group, error) {
	v, err := r.view(ctx, accountID, period)
	if err != nil {
		return nil, err
	}
	return r.aggregator.Grouped(v.operations, strategy), nil
}
