// Package storetest holds the behavioural checks every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// Factory returns a fresh, empty store. Cleanup is the caller's job via t.Cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the full contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AccountIDsNeverReused", func(t *testing.T) { testAccountIDsNeverReused(t, newStore(t)) })
	t.Run("CostCenterIDsNeverReused", func(t *testing.T) { testCostCenterIDsNeverReused(t, newStore(t)) })
	t.Run("PaymentIDsNeverReused", func(t *testing.T) { testPaymentIDsNeverReused(t, newStore(t)) })
	t.Run("DeleteThenGet", func(t *testing.T) { testDeleteThenGet(t, newStore(t)) })
	t.Run("EmptyPatchIsNoop", func(t *testing.T) { testEmptyPatchIsNoop(t, newStore(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newStore(t)) })
	t.Run("UpdateUnknownID", func(t *testing.T) { testUpdateUnknownID(t, newStore(t)) })
	t.Run("ListInInsertionOrder", func(t *testing.T) { testListInInsertionOrder(t, newStore(t)) })
	t.Run("AmountRoundTrip", func(t *testing.T) { testAmountRoundTrip(t, newStore(t)) })
	t.Run("AttachmentPaths", func(t *testing.T) { testAttachmentPaths(t, newStore(t)) })
	t.Run("DanglingReferencesAccepted", func(t *testing.T) { testDanglingReferencesAccepted(t, newStore(t)) })
}

func samplePayment(accountID, costCenterID int64) domain.Payment {
	return domain.Payment{
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("99.99"),
		Description:  "License",
		AccountID:    accountID,
		CostCenterID: costCenterID,
	}
}

func testAccountIDsNeverReused(t *testing.T, s store.Store) {
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		a, err := s.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
		require.NoError(t, err)
		require.Greater(t, a.ID, last)
		last = a.ID
	}

	ok, err := s.DeleteAccount(ctx, last)
	require.NoError(t, err)
	require.True(t, ok)

	a, err := s.CreateAccount(ctx, domain.Account{Name: "Card", Type: domain.AccountTypeCreditCard})
	require.NoError(t, err)
	assert.Greater(t, a.ID, last)
}

func testCostCenterIDsNeverReused(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Hardware"})
	require.NoError(t, err)

	_, err = s.DeleteCostCenter(ctx, second.ID)
	require.NoError(t, err)

	third, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "HR", Subcategory: "Training"})
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func testPaymentIDsNeverReused(t *testing.T, s store.Store) {
	ctx := context.Background()

	p1, err := s.CreatePayment(ctx, samplePayment(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), p1.ID)

	_, err = s.DeletePayment(ctx, p1.ID)
	require.NoError(t, err)

	p2, err := s.CreatePayment(ctx, samplePayment(1, 1))
	require.NoError(t, err)
	assert.Greater(t, p2.ID, p1.ID)
}

func testDeleteThenGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)
	c, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)
	p, err := s.CreatePayment(ctx, samplePayment(a.ID, c.ID))
	require.NoError(t, err)

	ok, err := s.DeleteAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetAccount(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	ok, err = s.DeleteAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeleteCostCenter(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetCostCenter(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = s.DeletePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetPayment(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	ok, err = s.DeletePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testEmptyPatchIsNoop(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)
	got, err := s.UpdateAccount(ctx, a.ID, domain.AccountPatch{})
	require.NoError(t, err)
	assert.Equal(t, *a, *got)

	c, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)
	gotCC, err := s.UpdateCostCenter(ctx, c.ID, domain.CostCenterPatch{})
	require.NoError(t, err)
	assert.Equal(t, *c, *gotCC)

	receipt := "receipt-1700000000000-a.pdf"
	in := samplePayment(a.ID, c.ID)
	in.ReceiptPath = &receipt
	p, err := s.CreatePayment(ctx, in)
	require.NoError(t, err)
	gotP, err := s.UpdatePayment(ctx, p.ID, domain.PaymentPatch{})
	require.NoError(t, err)
	assertSamePayment(t, *p, *gotP)
}

func testPartialUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)

	name := "Petty cash"
	got, err := s.UpdateAccount(ctx, a.ID, domain.AccountPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Petty cash", got.Name)
	assert.Equal(t, domain.AccountTypeBankAccount, got.Type)

	stored, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *got, *stored)

	c, err := s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)
	sub := "Licenses"
	gotCC, err := s.UpdateCostCenter(ctx, c.ID, domain.CostCenterPatch{Subcategory: &sub})
	require.NoError(t, err)
	assert.Equal(t, "IT", gotCC.Category)
	assert.Equal(t, "Licenses", gotCC.Subcategory)

	p, err := s.CreatePayment(ctx, samplePayment(a.ID, c.ID))
	require.NoError(t, err)
	amount := decimal.RequireFromString("120.50")
	desc := "License renewal"
	gotP, err := s.UpdatePayment(ctx, p.ID, domain.PaymentPatch{Amount: &amount, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "120.5", gotP.Amount.String())
	assert.Equal(t, "License renewal", gotP.Description)
	assert.True(t, p.Date.Equal(gotP.Date))
	assert.Equal(t, p.AccountID, gotP.AccountID)
}

func testUpdateUnknownID(t *testing.T, s store.Store) {
	ctx := context.Background()
	name := "x"

	_, err := s.UpdateAccount(ctx, 42, domain.AccountPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.UpdateCostCenter(ctx, 42, domain.CostCenterPatch{Category: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.UpdatePayment(ctx, 42, domain.PaymentPatch{Description: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testListInInsertionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()

	names := []string{"Zeta", "Alpha", "Mid"}
	for _, n := range names {
		_, err := s.CreateAccount(ctx, domain.Account{Name: n, Type: domain.AccountTypePayPal})
		require.NoError(t, err)
	}

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for i, a := range accounts {
		assert.Equal(t, names[i], a.Name)
	}

	for i := 0; i < 3; i++ {
		_, err := s.CreatePayment(ctx, samplePayment(1, 1))
		require.NoError(t, err)
	}
	payments, err := s.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Less(t, payments[0].ID, payments[1].ID)
	assert.Less(t, payments[1].ID, payments[2].ID)
}

func testAmountRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, raw := range []string{"0.1", "99.99", "-12.5", "1234567890123456789.123456789"} {
		in := samplePayment(1, 1)
		in.Amount = decimal.RequireFromString(raw)
		created, err := s.CreatePayment(ctx, in)
		require.NoError(t, err)

		got, err := s.GetPayment(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, in.Amount.Equal(got.Amount), "amount %s came back as %s", raw, got.Amount)
	}
}

func testAttachmentPaths(t *testing.T, s store.Store) {
	ctx := context.Background()

	p, err := s.CreatePayment(ctx, samplePayment(1, 1))
	require.NoError(t, err)
	assert.Nil(t, p.ReceiptPath)
	assert.Nil(t, p.RequestPath)

	receipt := "receipt-1700000000000-scan.pdf"
	var patch domain.PaymentPatch
	patch.SetAttachment(domain.SlotReceipt, &receipt)
	got, err := s.UpdatePayment(ctx, p.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, got.ReceiptPath)
	assert.Equal(t, receipt, *got.ReceiptPath)
	assert.Nil(t, got.RequestPath)

	var clear domain.PaymentPatch
	clear.SetAttachment(domain.SlotReceipt, nil)
	got, err = s.UpdatePayment(ctx, p.ID, clear)
	require.NoError(t, err)
	assert.Nil(t, got.ReceiptPath)

	stored, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReceiptPath)
}

func testDanglingReferencesAccepted(t *testing.T, s store.Store) {
	ctx := context.Background()

	p, err := s.CreatePayment(ctx, samplePayment(404, 405))
	require.NoError(t, err)
	assert.Equal(t, int64(404), p.AccountID)
	assert.Equal(t, int64(405), p.CostCenterID)
}

func assertSamePayment(t *testing.T, want, got domain.Payment) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.Date.Equal(got.Date), "date %s != %s", want.Date, got.Date)
	assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", want.Amount, got.Amount)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.AccountID, got.AccountID)
	assert.Equal(t, want.CostCenterID, got.CostCenterID)
	assert.Equal(t, want.ReceiptPath, got.ReceiptPath)
	assert.Equal(t, want.RequestPath, got.RequestPath)
}
