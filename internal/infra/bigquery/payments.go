package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// PaymentRow mirrors the payments table. amount is BIGNUMERIC in the table and
// is selected as STRING so no precision is lost on the way to decimal.Decimal.
type PaymentRow struct {
	ID           int64               `bigquery:"id"`             // REQUIRED
	Date         time.Time           `bigquery:"date"`           // REQUIRED TIMESTAMP
	Amount       string              `bigquery:"amount"`         // REQUIRED BIGNUMERIC (as STRING)
	Description  bigquery.NullString `bigquery:"description"`    // NULLABLE
	AccountID    int64               `bigquery:"account_id"`     // REQUIRED
	CostCenterID int64               `bigquery:"cost_center_id"` // REQUIRED
	ReceiptPath  bigquery.NullString `bigquery:"receipt_path"`   // NULLABLE
	RequestPath  bigquery.NullString `bigquery:"request_path"`   // NULLABLE
}

func (r PaymentRow) toDomain() (domain.Payment, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("payment %d: parse amount %q: %w", r.ID, r.Amount, err)
	}

	p := domain.Payment{
		ID:           r.ID,
		Date:         r.Date.UTC(),
		Amount:       amount,
		Description:  r.Description.StringVal,
		AccountID:    r.AccountID,
		CostCenterID: r.CostCenterID,
	}
	if r.ReceiptPath.Valid {
		v := r.ReceiptPath.StringVal
		p.ReceiptPath = &v
	}
	if r.RequestPath.Valid {
		v := r.RequestPath.StringVal
		p.RequestPath = &v
	}
	return p, nil
}

func paymentsToDomain(rows []PaymentRow) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
