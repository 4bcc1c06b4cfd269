package analytics

import (
	"strings"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
)

// Strategy maps an operation to its group key
type Strategy struct {
	Name string
	Key  func(op *operation.Operation) string
	// Less orders the resulting groups; nil keeps first-appearance order.
	Less func(a, b Group) bool
}

var (
	ByCategory = Strategy{
		Name: "category",
		Key:  func(op *operation.Operation) string { return op.CategoryID },
	}

	ByDay = Strategy{
		Name: "day",
		Key:  func(op *operation.Operation) string { return op.Date.Format("2006-01-02") },
		Less: func(a, b Group) bool { return a.Key < b.Key },
	}

	ByType = Strategy{
		Name: "type",
		Key:  func(op *operation.Operation) string { return string(op.Type) },
		Less: func(a, b Group) bool { return a.Key < b.Key },
	}
)

var strategies = map[string]Strategy{
	ByCategory.Name: ByCategory,
	ByDay.Name:      ByDay,
	ByType.Name:     ByType,
}

// StrategyByName resolves a grouping strategy by its name
func StrategyByName(name string) (Strategy, bool) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}
