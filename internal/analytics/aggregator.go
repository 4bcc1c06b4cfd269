package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// NetIncome summarizes a set of operations
type NetIncome struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CategorySum is the unsigned total of one category
type CategorySum struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// Group is the signed total of one grouping key
type Group struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// Aggregator computes read-only summaries over operations. It never
// mutates its input and holds no state.
type Aggregator struct{}

func NewAggregator() Aggregator {
	return Aggregator{}
}

func (Aggregator) NetIncome(ops []*operation.Operation) NetIncome {
	income, expense := decimal.Zero, decimal.Zero
	for _, op := range ops {
		switch op.Type {
		case shared.OperationTypeIncome:
			income = income.Add(op.Amount)
		case shared.OperationTypeExpense:
			expense = expense.Add(op.Amount)
		}
	}
	return NetIncome{Income: income, Expense: expense, Net: income.Sub(expense)}
}

// SumByCategory totals unsigned amounts per category, largest first. Ties
// are ordered by category id. nameOf may be nil; unknown names stay empty.
func (Aggregator) SumByCategory(ops []*operation.Operation, nameOf func(categoryID string) string) []CategorySum {
	totals := make(map[string]decimal.Decimal)
	for _, op := range ops {
		totals[op.CategoryID] = totals[op.CategoryID].Add(op.Amount)
	}

	result := make([]CategorySum, 0, len(totals))
	for id, total := range totals {
		sum := CategorySum{CategoryID: id, Total: total}
		if nameOf != nil {
			sum.Name = nameOf(id)
		}
		result = append(result, sum)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Total.Cmp(result[j].Total); c != 0 {
			return c > 0
		}
		return result[i].CategoryID < result[j].CategoryID
	})
	return result
}

// Grouped sums signed amounts per strategy key. Groups come out in the
// strategy's order, or in order of first appearance when it has none.
func (Aggregator) Grouped(ops []*operation.Operation, strategy Strategy) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, op := range ops {
		key := strategy.Key(op)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(op.SignedAmount())
	}

	if strategy.Less != nil {
		sort.SliceStable(groups, func(i, j int) bool { return strategy.Less(groups[i], groups[j]) })
	}
	return groups
}
