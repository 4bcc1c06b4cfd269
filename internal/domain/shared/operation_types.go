package shared

import (
	"fmt"
	"strings"
)

// OperationType classifies an operation and the categories it may reference
type OperationType string

const (
	OperationTypeIncome  OperationType = "INCOME"
	OperationTypeExpense OperationType = "EXPENSE"
)

// Valid reports whether t is one of the known operation types
func (t OperationType) Valid() bool {
	return t == OperationTypeIncome || t == OperationTypeExpense
}

// ParseOperationType accepts the type name in any letter case
func ParseOperationType(s string) (OperationType, error) {
	t := OperationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrValidationFailed{Rule: RuleOperationType, Details: fmt.Sprintf("unknown operation type %q", s)}
	}
	return t, nil
}

// Entity names carried by NotFound and DuplicateKey errors
const (
	EntityAccount   = "account"
	EntityCategory  = "category"
	EntityOperation = "operation"
)

// Rule names carried by ErrValidationFailed
type Rule string

const (
	RuleRequiredField     Rule = "REQUIRED_FIELD"
	RuleOperationType     Rule = "OPERATION_TYPE"
	RuleAmountNonNegative Rule = "AMOUNT_NON_NEGATIVE"
	RuleDateWindow        Rule = "DATE_WINDOW"
	RuleCategoryType      Rule = "CATEGORY_TYPE_MISMATCH"
	RuleCategoryInUse     Rule = "CATEGORY_IN_USE"
	RuleMalformedInput    Rule = "MALFORMED_INPUT"
)
