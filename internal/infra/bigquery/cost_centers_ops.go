package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

const costCenterColumns = "id, category, subcategory"

func (s *Store) CreateCostCenter(ctx context.Context, c domain.CostCenter) (*domain.CostCenter, error) {
	script := s.insertWithNextID(costCentersTable, `
		INSERT INTO `+s.table(costCentersTable)+` (id, category, subcategory)
		VALUES (new_id, @category, @subcategory)`)

	rows, err := readRows[idRow](ctx, s.client, script, []bigquery.QueryParameter{
		{Name: "category", Value: c.Category},
		{Name: "subcategory", Value: c.Subcategory},
	})
	if err != nil {
		return nil, fmt.Errorf("CreateCostCenter: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("CreateCostCenter: expected 1 id row, got %d", len(rows))
	}

	c.ID = rows[0].ID
	return &c, nil
}

func (s *Store) GetCostCenter(ctx context.Context, id int64) (*domain.CostCenter, error) {
	rows, err := readRows[CostCenterRow](ctx, s.client, `
		SELECT `+costCenterColumns+`
		FROM `+s.table(costCentersTable)+`
		WHERE id = @id
	`, []bigquery.QueryParameter{{Name: "id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("GetCostCenter: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cost center %d: %w", id, domain.ErrNotFound)
	}
	c := rows[0].toDomain()
	return &c, nil
}

func (s *Store) UpdateCostCenter(ctx context.Context, id int64, patch domain.CostCenterPatch) (*domain.CostCenter, error) {
	rows, err := readRows[CostCenterRow](ctx, s.client, `
		UPDATE `+s.table(costCentersTable)+`
		SET category = COALESCE(@category, category),
		    subcategory = COALESCE(@subcategory, subcategory)
		WHERE id = @id;
		SELECT `+costCenterColumns+` FROM `+s.table(costCentersTable)+` WHERE id = @id;
	`, []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "category", Value: nullString(patch.Category)},
		{Name: "subcategory", Value: nullString(patch.Subcategory)},
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateCostCenter: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cost center %d: %w", id, domain.ErrNotFound)
	}
	c := rows[0].toDomain()
	return &c, nil
}

func (s *Store) ListCostCenters(ctx context.Context) ([]domain.CostCenter, error) {
	rows, err := readRows[CostCenterRow](ctx, s.client, `
		SELECT `+costCenterColumns+`
		FROM `+s.table(costCentersTable)+`
		ORDER BY id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("ListCostCenters: %w", err)
	}

	out := make([]domain.CostCenter, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func nullString(p *string) bigquery.NullString {
	if p == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *p, Valid: true}
}
