package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

const paymentColumns = `
	id,
	date,
	CAST(amount AS STRING) AS amount,
	description,
	account_id,
	cost_center_id,
	receipt_path,
	request_path`

func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	script := s.insertWithNextID(paymentsTable, `
		INSERT INTO `+s.table(paymentsTable)+` (
			id, date, amount, description,
			account_id, cost_center_id,
			receipt_path, request_path
		)
		VALUES (
			new_id, @date, CAST(@amount AS BIGNUMERIC), @description,
			@account_id, @cost_center_id,
			@receipt_path, @request_path
		)`)

	rows, err := readRows[idRow](ctx, s.client, script, []bigquery.QueryParameter{
		{Name: "date", Value: p.Date.UTC()},
		{Name: "amount", Value: p.Amount.String()},
		{Name: "description", Value: p.Description},
		{Name: "account_id", Value: p.AccountID},
		{Name: "cost_center_id", Value: p.CostCenterID},
		{Name: "receipt_path", Value: nullString(p.ReceiptPath)},
		{Name: "request_path", Value: nullString(p.RequestPath)},
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("CreatePayment: expected 1 id row, got %d", len(rows))
	}

	p.ID = rows[0].ID
	return &p, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	rows, err := readRows[PaymentRow](ctx, s.client, `
		SELECT `+paymentColumns+`
		FROM `+s.table(paymentsTable)+`
		WHERE id = @id
	`, []bigquery.QueryParameter{{Name: "id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
	}

	p, err := rows[0].toDomain()
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	return &p, nil
}

// UpdatePayment applies the patch in one UPDATE. Attachment columns are
// driven by set flags so a NULL name clears the column.
func (s *Store) UpdatePayment(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error) {
	rows, err := readRows[PaymentRow](ctx, s.client, `
		UPDATE `+s.table(paymentsTable)+`
		SET date = COALESCE(@date, date),
		    amount = COALESCE(CAST(@amount AS BIGNUMERIC), amount),
		    description = COALESCE(@description, description),
		    account_id = COALESCE(@account_id, account_id),
		    cost_center_id = COALESCE(@cost_center_id, cost_center_id),
		    receipt_path = IF(@set_receipt, @receipt_path, receipt_path),
		    request_path = IF(@set_request, @request_path, request_path)
		WHERE id = @id;
		SELECT `+paymentColumns+` FROM `+s.table(paymentsTable)+` WHERE id = @id;
	`, paymentPatchParams(id, patch))
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
	}

	p, err := rows[0].toDomain()
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	rows, err := readRows[PaymentRow](ctx, s.client, `
		SELECT `+paymentColumns+`
		FROM `+s.table(paymentsTable)+`
		ORDER BY id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}

	out, err := paymentsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	return out, nil
}

// paymentPatchParams maps a patch onto query parameters. Absent fields become
// typed NULLs so COALESCE keeps the stored value.
func paymentPatchParams(id int64, patch domain.PaymentPatch) []bigquery.QueryParameter {
	date := bigquery.NullTimestamp{}
	if patch.Date != nil {
		date = bigquery.NullTimestamp{Timestamp: patch.Date.UTC(), Valid: true}
	}
	amount := bigquery.NullString{}
	if patch.Amount != nil {
		amount = bigquery.NullString{StringVal: patch.Amount.String(), Valid: true}
	}

	setReceipt, receipt := pathParam(patch.Receipt)
	setRequest, request := pathParam(patch.Request)

	return []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "date", Value: date},
		{Name: "amount", Value: amount},
		{Name: "description", Value: nullString(patch.Description)},
		{Name: "account_id", Value: nullInt64(patch.AccountID)},
		{Name: "cost_center_id", Value: nullInt64(patch.CostCenterID)},
		{Name: "set_receipt", Value: setReceipt},
		{Name: "receipt_path", Value: receipt},
		{Name: "set_request", Value: setRequest},
		{Name: "request_path", Value: request},
	}
}

func pathParam(u *domain.PathUpdate) (bool, bigquery.NullString) {
	if u == nil {
		return false, bigquery.NullString{}
	}
	return true, nullString(u.Name)
}

func nullInt64(p *int64) bigquery.NullInt64 {
	if p == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: *p, Valid: true}
}
