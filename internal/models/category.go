package models

import "fmt"

// Category classifies an article. The set is closed; unknown strings are
// rejected at parse time so a typo cannot silently break filtering.
type Category string

const (
	CategoryRetirementPlanning Category = "retirement_planning"
	CategoryPersonalFinance    Category = "personal_finance"
	CategoryEducation          Category = "education"
	CategoryGeneral            Category = "general"
)

// Categories lists all valid categories.
func Categories() []Category {
	return []Category{
		CategoryRetirementPlanning,
		CategoryPersonalFinance,
		CategoryEducation,
		CategoryGeneral,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRetirementPlanning, CategoryPersonalFinance, CategoryEducation, CategoryGeneral:
		return true
	}
	return false
}

// ParseCategory converts s to a Category. An empty string maps to
// CategoryGeneral; anything else unknown is an error.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryGeneral, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}
