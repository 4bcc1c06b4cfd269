package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

func op(id, category string, typ shared.OperationType, amount int64, date time.Time) *operation.Operation {
	return &operation.Operation{
		ID:         id,
		AccountID:  "acc-1",
		CategoryID: category,
		Type:       typ,
		Amount:     decimal.NewFromInt(amount),
		Date:       date,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 4, d, 9, 30, 0, 0, time.UTC)
}

func TestAggregator_Grouped(t *testing.T) {
	agg := NewAggregator()

	t.Run("ByCategory", func(t *testing.T) {
		ops := []*operation.Operation{
			op("1", "A", shared.OperationTypeIncome, 50, day(1)),
			op("2", "A", shared.OperationTypeExpense, 20, day(1)),
			op("3", "B", shared.OperationTypeIncome, 10, day(2)),
		}

		groups := agg.Grouped(ops, ByCategory)

		require.Len(t, groups, 2)
		totals := map[string]string{}
		for _, g := range groups {
			totals[g.Key] = g.Total.String()
		}
		assert.Equal(t, map[string]string{"A": "30", "B": "10"}, totals)
	})

	t.Run("ByDayIsChronological", func(t *testing.T) {
		ops := []*operation.Operation{
			op("1", "A", shared.OperationTypeIncome, 5, day(3)),
			op("2", "A", shared.OperationTypeExpense, 7, day(1)),
			op("3", "B", shared.OperationTypeIncome, 1, day(3)),
		}

		groups := agg.Grouped(ops, ByDay)

		require.Len(t, groups, 2)
		assert.Equal(t, "2024-04-01", groups[0].Key)
		assert.Equal(t, "-7", groups[0].Total.String())
		assert.Equal(t, "2024-04-03", groups[1].Key)
		assert.Equal(t, "6", groups[1].Total.String())
	})

	t.Run("ByType", func(t *testing.T) {
		ops := []*operation.Operation{
			op("1", "A", shared.OperationTypeIncome, 5, day(1)),
			op("2", "B", shared.OperationTypeExpense, 7, day(1)),
		}

		groups := agg.Grouped(ops, ByType)

		require.Len(t, groups, 2)
		assert.Equal(t, "EXPENSE", groups[0].Key)
		assert.Equal(t, "-7", groups[0].Total.String())
		assert.Equal(t, "5", groups[1].Total.String())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, agg.Grouped(nil, ByCategory))
	})
}

func TestAggregator_NetIncome(t *testing.T) {
	ops := []*operation.Operation{
		op("1", "A", shared.OperationTypeIncome, 100, day(1)),
		op("2", "B", shared.OperationTypeExpense, 30, day(2)),
		op("3", "B", shared.OperationTypeExpense, 90, day(2)),
	}

	got := NewAggregator().NetIncome(ops)

	assert.Equal(t, "100", got.Income.String())
	assert.Equal(t, "120", got.Expense.String())
	assert.Equal(t, "-20", got.Net.String())
}

func TestAggregator_SumByCategory(t *testing.T) {
	ops := []*operation.Operation{
		op("1", "food", shared.OperationTypeExpense, 30, day(1)),
		op("2", "rent", shared.OperationTypeExpense, 500, day(1)),
		op("3", "food", shared.OperationTypeExpense, 20, day(2)),
		op("4", "fun", shared.OperationTypeExpense, 50, day(2)),
	}
	names := map[string]string{"food": "Food", "rent": "Rent"}

	sums := NewAggregator().SumByCategory(ops, func(id string) string { return names[id] })

	require.Len(t, sums, 3)
	assert.Equal(t, "rent", sums[0].CategoryID)
	assert.Equal(t, "Rent", sums[0].Name)
	// food and fun tie at 50 and fall back to id order
	assert.Equal(t, "food", sums[1].CategoryID)
	assert.Equal(t, "50", sums[1].Total.String())
	assert.Equal(t, "fun", sums[2].CategoryID)
	assert.Equal(t, "", sums[2].Name)
}

func TestStrategyByName(t *testing.T) {
	for _, name := range []string{"category", "DAY", " type "} {
		_, ok := StrategyByName(name)
		assert.True(t, ok, name)
	}
	_, ok := StrategyByName("week")
	assert.False(t, ok)
}
