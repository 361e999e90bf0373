package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
	"github.com/dvloznov/payment-tracker/internal/store/storetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "payments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestStore(t)
	})
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.db")

	s1, err := Open(path)
	require.NoError(t, err)
	a, err := s1.CreateAccount(context.Background(), domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cash", got.Name)
}

func TestIDsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	a, err := s1.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)
	_, err = s1.DeleteAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	b, err := s2.CreateAccount(ctx, domain.Account{Name: "Card", Type: domain.AccountTypeCreditCard})
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestPaymentDateStoredInUTC(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rome := time.FixedZone("CET", 3600)
	in := domain.Payment{
		Date:         time.Date(2024, 3, 1, 0, 30, 0, 0, rome),
		Amount:       decimal.RequireFromString("10"),
		AccountID:    1,
		CostCenterID: 1,
	}
	p, err := s.CreatePayment(ctx, in)
	require.NoError(t, err)

	got, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, in.Date.Equal(got.Date))
	assert.Equal(t, time.UTC, got.Date.Location())
}

func TestCreateAccount_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("Cash", "BankAccount").
		WillReturnError(errors.New("disk I/O error"))

	s := New(db)
	_, err = s.CreateAccount(context.Background(), domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CreateAccount")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayment_QueryErrorIsNotNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnError(errors.New("database is locked"))

	s := New(db)
	_, err = s.GetPayment(context.Background(), 7)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayment_CorruptAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "date", "amount", "description", "account_id", "cost_center_id", "receipt_path", "request_path"}).
		AddRow(int64(3), "2024-01-15T00:00:00Z", "twelve", "", int64(1), int64(1), nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id = ?").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	s := New(db)
	_, err = s.GetPayment(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse amount")
}

func TestDeletePayment_RowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM payments WHERE id = ?").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM payments WHERE id = ?").
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := New(db)
	ok, err := s.DeletePayment(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeletePayment(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccounts_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "type"}).
		AddRow(int64(1), "Cash", "BankAccount").
		RowError(0, errors.New("read failed"))
	mock.ExpectQuery("SELECT (.+) FROM accounts ORDER BY id").WillReturnRows(rows)

	s := New(db)
	_, err = s.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListAccounts")
}
