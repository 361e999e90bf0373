package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentPatch_EmptyLeavesPaymentUnchanged(t *testing.T) {
	receipt := "receipt-1-a.pdf"
	p := Payment{
		ID:           3,
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("99.99"),
		Description:  "License",
		AccountID:    1,
		CostCenterID: 2,
		ReceiptPath:  &receipt,
	}

	got := PaymentPatch{}.Apply(p)
	assert.Equal(t, p, got)
}

func TestPaymentPatch_Apply(t *testing.T) {
	old := "receipt-1-old.pdf"
	p := Payment{ID: 1, Description: "old", AccountID: 1, CostCenterID: 1, ReceiptPath: &old}

	desc := "new"
	account := int64(7)
	patch := PaymentPatch{Description: &desc, AccountID: &account}
	patch.SetAttachment(SlotReceipt, nil)

	got := patch.Apply(p)
	assert.Equal(t, "new", got.Description)
	assert.Equal(t, int64(7), got.AccountID)
	assert.Equal(t, int64(1), got.CostCenterID)
	assert.Nil(t, got.ReceiptPath)
	assert.Nil(t, got.RequestPath)
}

func TestPayment_Validate(t *testing.T) {
	valid := Payment{Date: time.Now(), AccountID: 1, CostCenterID: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mod   func(p *Payment)
		field string
	}{
		{"missing date", func(p *Payment) { p.Date = time.Time{} }, "date"},
		{"zero account", func(p *Payment) { p.AccountID = 0 }, "accountId"},
		{"negative cost center", func(p *Payment) { p.CostCenterID = -1 }, "costCenterId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mod(&p)
			err := p.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPayment_JSONFieldNames(t *testing.T) {
	p := PaymentWithRelations{
		Payment: Payment{
			ID:           1,
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Amount:       decimal.RequireFromString("99.99"),
			AccountID:    1,
			CostCenterID: 1,
		},
		Account:    Account{ID: 1, Name: "Cash", Type: AccountTypeBankAccount},
		CostCenter: CostCenter{ID: 1, Category: "IT", Subcategory: "Software"},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "date", "amount", "description", "accountId", "costCenterId", "receiptPath", "requestPath", "account", "costCenter"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "99.99", fields["amount"])
	assert.Nil(t, fields["receiptPath"])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2024-01-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestParseDateIn_PlainDateIsLocalMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d, err := ParseDateIn("2024-01-15", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, ny), d)
	assert.Equal(t, 15, d.In(ny).Day())

	ts, err := ParseDateIn("2024-01-15T03:00:00Z", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC), ts.UTC())

	nilLoc, err := ParseDateIn("2024-01-15", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), nilLoc)
}

func TestAccount_Validate(t *testing.T) {
	assert.NoError(t, Account{Name: "Cash", Type: AccountTypeBankAccount}.Validate())
	assert.True(t, IsValidation(Account{Name: " ", Type: AccountTypePayPal}.Validate()))
	assert.True(t, IsValidation(Account{Name: "Cash", Type: "Carta di credito"}.Validate()))

	empty := ""
	assert.True(t, IsValidation(AccountPatch{Name: &empty}.Validate()))
	assert.NoError(t, AccountPatch{}.Validate())
}

func TestCostCenter_Label(t *testing.T) {
	assert.Equal(t, "IT - Software", CostCenter{Category: "IT", Subcategory: "Software"}.Label())
}
