package category

import (
	"strings"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// Category labels operations; its Type must match the type of every
// operation that references it.
type Category struct {
	ID   string               `json:"id"`
	Name string               `json:"name"`
	Type shared.OperationType `json:"type"`
}

// NewCategory creates a category with the given parameters
func NewCategory(id, name string, typ shared.OperationType) (*Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "category id cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.Invalid(shared.RuleRequiredField, "category name cannot be empty")
	}
	if !typ.Valid() {
		return nil, shared.Invalid(shared.RuleOperationType, "unknown category type %q", typ)
	}

	return &Category{ID: id, Name: name, Type: typ}, nil
}

func (c *Category) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.Invalid(shared.RuleRequiredField, "category name cannot be empty")
	}
	c.Name = name
	return nil
}

// ChangeType switches the category type. Callers check that no operation
// of the old type still references the category.
func (c *Category) ChangeType(typ shared.OperationType) error {
	if !typ.Valid() {
		return shared.Invalid(shared.RuleOperationType, "unknown category type %q", typ)
	}
	c.Type = typ
	return nil
}

func (c *Category) Key() string { return c.ID }

func (c *Category) Clone() *Category {
	cp := *c
	return &cp
}
