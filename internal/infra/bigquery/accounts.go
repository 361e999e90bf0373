package bigquery

import "github.com/dvloznov/payment-tracker/internal/domain"

type AccountRow struct {
	ID   int64  `bigquery:"id"`   // REQUIRED
	Name string `bigquery:"name"` // REQUIRED
	Type string `bigquery:"type"` // REQUIRED
}

func (r AccountRow) toDomain() domain.Account {
	return domain.Account{ID: r.ID, Name: r.Name, Type: domain.AccountType(r.Type)}
}
