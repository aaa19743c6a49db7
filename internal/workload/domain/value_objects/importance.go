package value_objects

import (
	"errors"
	"strings"
)

// Importance is how much a deadline matters to its owner.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

var (
	ErrInvalidImportance = errors.New("importance must be one of low, medium, high")
)

// ParseImportance accepts low, medium or high in any case.
func ParseImportance(s string) (Importance, error) {
	i := NormalizeImportance(s)
	if !i.IsValid() {
		return "", ErrInvalidImportance
	}
	return i, nil
}

// NormalizeImportance lower-cases s without validating it. Scoring uses this
// for caller-supplied lists, where an unknown level falls back to a default
// weight instead of failing.
func NormalizeImportance(s string) Importance {
	return Importance(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the string representation of the importance.
func (i Importance) String() string {
	return string(i)
}

// IsValid returns true if the importance is one of the known levels.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}
