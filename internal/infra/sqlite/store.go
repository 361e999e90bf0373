// Package sqlite implements store.Store on a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store persists accounts, cost centers and payments in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
//
// The connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - a single open connection, so writers never see SQLITE_BUSY
//   - a 5-second busy timeout
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an already configured database handle. The schema must exist.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// --- accounts ---

const accountColumns = "id, name, type"

func (s *Store) CreateAccount(ctx context.Context, a domain.Account) (*domain.Account, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO accounts (name, type) VALUES (?, ?)`, a.Name, string(a.Type))
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: last insert id: %w", err)
	}
	a.ID = id
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, notFound("GetAccount", "account", id, err)
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id int64, patch domain.AccountPatch) (*domain.Account, error) {
	var typ *string
	if patch.Type != nil {
		v := string(*patch.Type)
		typ = &v
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET name = COALESCE(?, name),
		    type = COALESCE(?, type)
		WHERE id = ?
		RETURNING `+accountColumns,
		patch.Name, typ, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, notFound("UpdateAccount", "account", id, err)
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeleteAccount", `DELETE FROM accounts WHERE id = ?`, id)
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return out, nil
}

func scanAccount(r rowScanner) (*domain.Account, error) {
	var (
		a   domain.Account
		typ string
	)
	if err := r.Scan(&a.ID, &a.Name, &typ); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(typ)
	return &a, nil
}

// --- cost centers ---

const costCenterColumns = "id, category, subcategory"

func (s *Store) CreateCostCenter(ctx context.Context, c domain.CostCenter) (*domain.CostCenter, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO cost_centers (category, subcategory) VALUES (?, ?)`, c.Category, c.Subcategory)
	if err != nil {
		return nil, fmt.Errorf("CreateCostCenter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("CreateCostCenter: last insert id: %w", err)
	}
	c.ID = id
	return &c, nil
}

func (s *Store) GetCostCenter(ctx context.Context, id int64) (*domain.CostCenter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+costCenterColumns+` FROM cost_centers WHERE id = ?`, id)
	c, err := scanCostCenter(row)
	if err != nil {
		return nil, notFound("GetCostCenter", "cost center", id, err)
	}
	return c, nil
}

func (s *Store) UpdateCostCenter(ctx context.Context, id int64, patch domain.CostCenterPatch) (*domain.CostCenter, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE cost_centers
		SET category = COALESCE(?, category),
		    subcategory = COALESCE(?, subcategory)
		WHERE id = ?
		RETURNING `+costCenterColumns,
		patch.Category, patch.Subcategory, id)
	c, err := scanCostCenter(row)
	if err != nil {
		return nil, notFound("UpdateCostCenter", "cost center", id, err)
	}
	return c, nil
}

func (s *Store) DeleteCostCenter(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeleteCostCenter", `DELETE FROM cost_centers WHERE id = ?`, id)
}

func (s *Store) ListCostCenters(ctx context.Context) ([]domain.CostCenter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+costCenterColumns+` FROM cost_centers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListCostCenters: %w", err)
	}
	defer rows.Close()

	out := []domain.CostCenter{}
	for rows.Next() {
		c, err := scanCostCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("ListCostCenters: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCostCenters: %w", err)
	}
	return out, nil
}

func scanCostCenter(r rowScanner) (*domain.CostCenter, error) {
	var c domain.CostCenter
	if err := r.Scan(&c.ID, &c.Category, &c.Subcategory); err != nil {
		return nil, err
	}
	return &c, nil
}

// --- payments ---

const paymentColumns = "id, date, amount, description, account_id, cost_center_id, receipt_path, request_path"

func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (date, amount, description, account_id, cost_center_id, receipt_path, request_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(p.Date), p.Amount.String(), p.Description, p.AccountID, p.CostCenterID,
		p.ReceiptPath, p.RequestPath)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: last insert id: %w", err)
	}
	p.ID = id
	return &p, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, notFound("GetPayment", "payment", id, err)
	}
	return p, nil
}

// UpdatePayment applies the patch in one statement. Attachment columns use a
// set flag so that a nil name can clear the column instead of keeping it.
func (s *Store) UpdatePayment(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error) {
	var date, amount *string
	if patch.Date != nil {
		v := formatTime(*patch.Date)
		date = &v
	}
	if patch.Amount != nil {
		v := patch.Amount.String()
		amount = &v
	}
	setReceipt, receipt := pathArgs(patch.Receipt)
	setRequest, request := pathArgs(patch.Request)

	row := s.db.QueryRowContext(ctx, `
		UPDATE payments
		SET date = COALESCE(?, date),
		    amount = COALESCE(?, amount),
		    description = COALESCE(?, description),
		    account_id = COALESCE(?, account_id),
		    cost_center_id = COALESCE(?, cost_center_id),
		    receipt_path = CASE WHEN ? THEN ? ELSE receipt_path END,
		    request_path = CASE WHEN ? THEN ? ELSE request_path END
		WHERE id = ?
		RETURNING `+paymentColumns,
		date, amount, patch.Description, patch.AccountID, patch.CostCenterID,
		setReceipt, receipt, setRequest, request, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, notFound("UpdatePayment", "payment", id, err)
	}
	return p, nil
}

func (s *Store) DeletePayment(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "DeletePayment", `DELETE FROM payments WHERE id = ?`, id)
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	defer rows.Close()

	out := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPayments: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	return out, nil
}

func scanPayment(r rowScanner) (*domain.Payment, error) {
	var (
		p                domain.Payment
		date, amount     string
		receipt, request sql.NullString
	)
	if err := r.Scan(&p.ID, &date, &amount, &p.Description, &p.AccountID, &p.CostCenterID, &receipt, &request); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return nil, fmt.Errorf("payment %d: parse date %q: %w", p.ID, date, err)
	}
	p.Date = t

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("payment %d: parse amount %q: %w", p.ID, amount, err)
	}
	p.Amount = d

	if receipt.Valid {
		p.ReceiptPath = &receipt.String
	}
	if request.Valid {
		p.RequestPath = &request.String
	}
	return &p, nil
}

// --- helpers ---

func (s *Store) deleteByID(ctx context.Context, op, query string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n > 0, nil
}

// notFound maps sql.ErrNoRows onto domain.ErrNotFound and wraps everything else.
func notFound(op, entity string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pathArgs(u *domain.PathUpdate) (bool, *string) {
	if u == nil {
		return false, nil
	}
	return true, u.Name
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
