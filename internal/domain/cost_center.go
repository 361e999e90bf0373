package domain

import "strings"

// CostCenter classifies payments by a category/subcategory pair.
// Several cost centers may share a category.
type CostCenter struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Label renders the cost center the way lists and search show it.
func (c CostCenter) Label() string {
	return c.Category + " - " + c.Subcategory
}

func (c CostCenter) Validate() error {
	if strings.TrimSpace(c.Category) == "" {
		return NewValidationError("category", "is required")
	}
	if strings.TrimSpace(c.Subcategory) == "" {
		return NewValidationError("subcategory", "is required")
	}
	return nil
}

// CostCenterPatch carries the fields of a partial cost center update.
type CostCenterPatch struct {
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
}

func (p CostCenterPatch) Validate() error {
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}
	if p.Subcategory != nil && strings.TrimSpace(*p.Subcategory) == "" {
		return NewValidationError("subcategory", "must not be empty")
	}
	return nil
}

func (p CostCenterPatch) Apply(c CostCenter) CostCenter {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Subcategory != nil {
		c.Subcategory = *p.Subcategory
	}
	return c
}
