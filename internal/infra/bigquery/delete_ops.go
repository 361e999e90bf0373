package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DeleteAccount removes the account row. Payments that reference it are kept.
func (s *Store) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeleteAccount", accountsTable, id)
}

// DeleteCostCenter removes the cost center row. Payments that reference it are kept.
func (s *Store) DeleteCostCenter(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeleteCostCenter", costCentersTable, id)
}

// DeletePayment removes the payment row. Stored attachments are the caller's concern.
func (s *Store) DeletePayment(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeletePayment", paymentsTable, id)
}

func (s *Store) deleteByID(ctx context.Context, op, table string, id int64) (bool, error) {
	n, err := s.runDML(ctx, `
		DELETE FROM `+s.table(table)+`
		WHERE id = @id
	`, []bigquery.QueryParameter{{Name: "id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
