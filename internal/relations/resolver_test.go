package relations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
	"github.com/dvloznov/payment-tracker/internal/store/inmemory"
)

type fixture struct {
	store      *inmemory.Store
	account    *domain.Account
	costCenter *domain.CostCenter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := inmemory.NewStore()
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, domain.Account{Name: "PayPal Business", Type: domain.AccountTypePayPal})
	require.NoError(t, err)
	c, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)
	return fixture{store: s, account: a, costCenter: c}
}

func (f fixture) payment(t *testing.T, accountID, costCenterID int64) domain.Payment {
	t.Helper()
	p, err := f.store.CreatePayment(context.Background(), domain.Payment{
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("99.99"),
		Description:  "License",
		AccountID:    accountID,
		CostCenterID: costCenterID,
	})
	require.NoError(t, err)
	return *p
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, f.account.ID, f.costCenter.ID)

	got, err := NewResolver(f.store, f.store).Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, *f.account, got.Account)
	assert.Equal(t, *f.costCenter, got.CostCenter)
}

func TestResolve_AccountDeletedAfterPayment(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, f.account.ID, f.costCenter.ID)

	ok, err := f.store.DeleteAccount(context.Background(), f.account.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = NewResolver(f.store, f.store).Resolve(context.Background(), p)
	var rel *domain.RelationNotFoundError
	require.ErrorAs(t, err, &rel)
	assert.Equal(t, p.ID, rel.PaymentID)
	assert.Equal(t, "account", rel.Relation)
	assert.Equal(t, f.account.ID, rel.RelatedID)
}

func TestResolve_MissingCostCenter(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, f.account.ID, 99)

	_, err := NewResolver(f.store, f.store).Resolve(context.Background(), p)
	var rel *domain.RelationNotFoundError
	require.ErrorAs(t, err, &rel)
	assert.Equal(t, "costCenter", rel.Relation)
	assert.Equal(t, int64(99), rel.RelatedID)
}

func TestResolveAll(t *testing.T) {
	f := newFixture(t)
	p1 := f.payment(t, f.account.ID, f.costCenter.ID)
	p2 := f.payment(t, f.account.ID, f.costCenter.ID)

	got, err := NewResolver(f.store, f.store).ResolveAll(context.Background(), []domain.Payment{p2, p1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p2.ID, got[0].ID)
	assert.Equal(t, p1.ID, got[1].ID)
	assert.Equal(t, "IT - Software", got[0].CostCenter.Label())
}

func TestResolveAll_OneDanglingFailsAll(t *testing.T) {
	f := newFixture(t)
	good := f.payment(t, f.account.ID, f.costCenter.ID)
	bad := f.payment(t, 404, f.costCenter.ID)

	got, err := NewResolver(f.store, f.store).ResolveAll(context.Background(), []domain.Payment{good, bad})
	assert.Nil(t, got)
	assert.True(t, domain.IsRelationNotFound(err))
}

func TestResolveAll_Empty(t *testing.T) {
	f := newFixture(t)
	got, err := NewResolver(f.store, f.store).ResolveAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingAccounts struct {
	store.AccountRepository
}

func (failingAccounts) GetAccount(context.Context, int64) (*domain.Account, error) {
	return nil, errors.New("backend unavailable")
}

func TestResolve_BackendErrorIsNotRelationError(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, f.account.ID, f.costCenter.ID)

	_, err := NewResolver(failingAccounts{f.store}, f.store).Resolve(context.Background(), p)
	require.Error(t, err)
	assert.False(t, domain.IsRelationNotFound(err))
}
