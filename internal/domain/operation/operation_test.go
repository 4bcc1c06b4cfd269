package operation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

func TestNewOperation(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("SuccessfulCreation", func(t *testing.T) {
		op, err := NewOperation("op-1", "acc-1", "cat-1", shared.OperationTypeIncome, decimal.NewFromInt(100), date, "salary")

		require.NoError(t, err)
		assert.Equal(t, "op-1", op.Key())
		assert.Equal(t, "acc-1", op.AccountID)
		assert.Equal(t, date, op.Date)
		assert.Equal(t, "salary", op.Description)
	})

	t.Run("ZeroAmountAllowed", func(t *testing.T) {
		op, err := NewOperation("op-1", "acc-1", "cat-1", shared.OperationTypeExpense, decimal.Zero, date, "")

		require.NoError(t, err)
		assert.True(t, op.SignedAmount().IsZero())
	})

	failures := []struct {
		name       string
		id         string
		accountID  string
		categoryID string
		typ        shared.OperationType
		amount     decimal.Decimal
		rule       shared.Rule
	}{
		{"EmptyID", "", "acc-1", "cat-1", shared.OperationTypeIncome, decimal.NewFromInt(1), shared.RuleRequiredField},
		{"EmptyAccount", "op-1", "", "cat-1", shared.OperationTypeIncome, decimal.NewFromInt(1), shared.RuleRequiredField},
		{"EmptyCategory", "op-1", "acc-1", "", shared.OperationTypeIncome, decimal.NewFromInt(1), shared.RuleRequiredField},
		{"UnknownType", "op-1", "acc-1", "cat-1", "REFUND", decimal.NewFromInt(1), shared.RuleOperationType},
		{"NegativeAmount", "op-1", "acc-1", "cat-1", shared.OperationTypeIncome, decimal.NewFromInt(-1), shared.RuleAmountNonNegative},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			op, err := NewOperation(tt.id, tt.accountID, tt.categoryID, tt.typ, tt.amount, date, "")

			assert.Nil(t, op)
			assert.ErrorIs(t, err, shared.ErrValidationFailed{Rule: tt.rule})
		})
	}
}

func TestOperation_SignedAmount(t *testing.T) {
	op := &Operation{Type: shared.OperationTypeIncome, Amount: decimal.NewFromInt(100)}
	assert.Equal(t, "100", op.SignedAmount().String())

	require.NoError(t, op.SetType(shared.OperationTypeExpense))
	assert.Equal(t, "-100", op.SignedAmount().String())
}

func TestOperation_Setters(t *testing.T) {
	op := &Operation{ID: "op-1", Type: shared.OperationTypeIncome, CategoryID: "cat-1", Amount: decimal.NewFromInt(100)}

	assert.Error(t, op.SetAmount(decimal.NewFromInt(-5)))
	assert.Error(t, op.SetCategory(""))
	assert.Error(t, op.SetType("NOPE"))
	assert.Equal(t, "100", op.Amount.String(), "rejected setters leave the operation untouched")

	require.NoError(t, op.SetAmount(decimal.NewFromInt(50)))
	require.NoError(t, op.SetCategory("cat-2"))
	op.SetDescription("lunch")
	assert.Equal(t, "50", op.Amount.String())
	assert.Equal(t, "cat-2", op.CategoryID)
	assert.Equal(t, "lunch", op.Description)
}

func TestOperation_InPeriod(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	op := &Operation{Date: day(10)}

	tests := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"Open", time.Time{}, time.Time{}, true},
		{"Inside", day(1), day(31), true},
		{"InclusiveBounds", day(10), day(10), true},
		{"Before", day(11), time.Time{}, false},
		{"After", time.Time{}, day(9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, op.InPeriod(tt.from, tt.to))
		})
	}
}
