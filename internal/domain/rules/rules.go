package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// DefaultFutureTolerance is how far past "now" an operation date may lie
const DefaultFutureTolerance = 24 * time.Hour

// RuleSet holds the pure predicates the ledger validates against
type RuleSet interface {
	AmountValid(amount decimal.Decimal) bool
	DateValid(date, now time.Time) bool
	CategoryMatches(operationType, categoryType shared.OperationType) bool
}

// Default implements RuleSet with a configurable future tolerance
type Default struct {
	FutureTolerance time.Duration
}

// New returns the default rule set; a non-positive tolerance falls back to DefaultFutureTolerance
func New(futureTolerance time.Duration) Default {
	if futureTolerance <= 0 {
		futureTolerance = DefaultFutureTolerance
	}
	return Default{FutureTolerance: futureTolerance}
}

func (r Default) AmountValid(amount decimal.Decimal) bool {
	return !amount.IsNegative()
}

// DateValid rejects the zero time and anything later than now plus the tolerance
func (r Default) DateValid(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !date.After(now.Add(r.FutureTolerance))
}

func (r Default) CategoryMatches(operationType, categoryType shared.OperationType) bool {
	return operationType.Valid() && operationType == categoryType
}
