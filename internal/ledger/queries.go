package ledger

import (
	"context"
	"sort"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// OperationsByAccount returns the account's operations ordered by date, then id
func OperationsByAccount(ctx context.Context, ops store.Reader[*operation.Operation], accountID string) ([]*operation.Operation, error) {
	return OperationsByAccountAndPeriod(ctx, ops, accountID, Period{})
}

// OperationsByAccountAndPeriod narrows OperationsByAccount to an inclusive date range
func OperationsByAccountAndPeriod(ctx context.Context, ops store.Reader[*operation.Operation], accountID string, period Period) ([]*operation.Operation, error) {
	all, err := ops.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var result []*operation.Operation
	for _, op := range all {
		if op.AccountID == accountID && op.InPeriod(period.From, period.To) {
			result = append(result, op)
		}
	}
	sortByDate(result)
	return result, nil
}

func sortByDate(ops []*operation.Operation) {
	sort.Slice(ops, func(i, j int) bool {
		if !ops[i].Date.Equal(ops[j].Date) {
			return ops[i].Date.Before(ops[j].Date)
		}
		return ops[i].ID < ops[j].ID
	})
}
