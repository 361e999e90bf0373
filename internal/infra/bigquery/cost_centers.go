package bigquery

import "github.com/dvloznov/payment-tracker/internal/domain"

type CostCenterRow struct {
	ID          int64  `bigquery:"id"`          // REQUIRED
	Category    string `bigquery:"category"`    // REQUIRED
	Subcategory string `bigquery:"subcategory"` // REQUIRED
}

func (r CostCenterRow) toDomain() domain.CostCenter {
	return domain.CostCenter{ID: r.ID, Category: r.Category, Subcategory: r.Subcategory}
}
