package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

const accountColumns = "id, name, type"

// CreateAccount allocates the next account id and inserts the row.
func (s *Store) CreateAccount(ctx context.Context, a domain.Account) (*domain.Account, error) {
	script := s.insertWithNextID(accountsTable, `
		INSERT INTO `+s.table(accountsTable)+` (id, name, type)
		VALUES (new_id, @name, @type)`)

	rows, err := readRows[idRow](ctx, s.client, script, []bigquery.QueryParameter{
		{Name: "name", Value: a.Name},
		{Name: "type", Value: string(a.Type)},
	})
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("CreateAccount: expected 1 id row, got %d", len(rows))
	}

	a.ID = rows[0].ID
	return &a, nil
}

// GetAccount returns domain.ErrNotFound when no account has id.
func (s *Store) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	rows, err := readRows[AccountRow](ctx, s.client, `
		SELECT `+accountColumns+`
		FROM `+s.table(accountsTable)+`
		WHERE id = @id
	`, []bigquery.QueryParameter{{Name: "id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrNotFound)
	}
	a := rows[0].toDomain()
	return &a, nil
}

// UpdateAccount merges the patch with a single UPDATE and reads the row back
// in the same script.
func (s *Store) UpdateAccount(ctx context.Context, id int64, patch domain.AccountPatch) (*domain.Account, error) {
	var typ *string
	if patch.Type != nil {
		v := string(*patch.Type)
		typ = &v
	}

	rows, err := readRows[AccountRow](ctx, s.client, `
		UPDATE `+s.table(accountsTable)+`
		SET name = COALESCE(@name, name),
		    type = COALESCE(@type, type)
		WHERE id = @id;
		SELECT `+accountColumns+` FROM `+s.table(accountsTable)+` WHERE id = @id;
	`, []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "name", Value: nullString(patch.Name)},
		{Name: "type", Value: nullString(typ)},
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrNotFound)
	}
	a := rows[0].toDomain()
	return &a, nil
}

// ListAccounts returns every account ordered by id, which is insertion order.
func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := readRows[AccountRow](ctx, s.client, `
		SELECT `+accountColumns+`
		FROM `+s.table(accountsTable)+`
		ORDER BY id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}

	out := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
