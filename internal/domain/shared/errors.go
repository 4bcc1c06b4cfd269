package shared

import "fmt"

// ErrNotFound indicates a missing entity
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.ID
}

// Is matches any ErrNotFound when the target leaves Entity or ID empty
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// ErrDuplicateKey indicates an insert of an id that is already stored
type ErrDuplicateKey struct {
	Entity string
	ID     string
}

func (e ErrDuplicateKey) Error() string {
	return "duplicate " + e.Entity + ": " + e.ID
}

// Is implements the errors.Is interface for ErrDuplicateKey
func (e ErrDuplicateKey) Is(target error) bool {
	t, ok := target.(ErrDuplicateKey)
	if !ok {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// ErrValidationFailed indicates a rejected input; nothing was persisted
type ErrValidationFailed struct {
	Rule    Rule
	Details string
}

func (e ErrValidationFailed) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", e.Rule, e.Details)
}

// Is matches on Rule; an empty target Rule matches any validation failure
func (e ErrValidationFailed) Is(target error) bool {
	t, ok := target.(ErrValidationFailed)
	if !ok {
		return false
	}
	return t.Rule == "" || t.Rule == e.Rule
}

// Invalid builds an ErrValidationFailed with formatted details
func Invalid(rule Rule, format string, args ...any) error {
	return ErrValidationFailed{Rule: rule, Details: fmt.Sprintf(format, args...)}
}
