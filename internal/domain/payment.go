package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format accepted for payment dates and filters.
const DateLayout = "2006-01-02"

// Payment is a single expense drawn from an account and booked to a cost center.
// ReceiptPath and RequestPath hold stored attachment names, nil when empty.
type Payment struct {
	ID           int64           `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	AccountID    int64           `json:"accountId"`
	CostCenterID int64           `json:"costCenterId"`
	ReceiptPath  *string         `json:"receiptPath"`
	RequestPath  *string         `json:"requestPath"`
}

// Validate checks the fields required to store a payment.
// It does not check that AccountID and CostCenterID exist.
func (p Payment) Validate() error {
	if p.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	if p.AccountID <= 0 {
		return NewValidationError("accountId", "must be a positive id")
	}
	if p.CostCenterID <= 0 {
		return NewValidationError("costCenterId", "must be a positive id")
	}
	return nil
}

// AttachmentPath returns the stored name held in slot, or nil.
func (p Payment) AttachmentPath(slot Slot) *string {
	if slot == SlotRequest {
		return p.RequestPath
	}
	return p.ReceiptPath
}

// PaymentWithRelations is a payment joined with its account and cost center.
// It is assembled on read and never persisted.
type PaymentWithRelations struct {
	Payment
	Account    Account    `json:"account"`
	CostCenter CostCenter `json:"costCenter"`
}

// PathUpdate replaces the stored name of an attachment slot.
// A nil Name clears the slot.
type PathUpdate struct {
	Name *string
}

// PaymentPatch carries the fields of a partial payment update.
// Nil fields are left untouched.
type PaymentPatch struct {
	Date         *time.Time
	Amount       *decimal.Decimal
	Description  *string
	AccountID    *int64
	CostCenterID *int64
	Receipt      *PathUpdate
	Request      *PathUpdate
}

func (p PaymentPatch) Validate() error {
	if p.Date != nil && p.Date.IsZero() {
		return NewValidationError("date", "must not be empty")
	}
	if p.AccountID != nil && *p.AccountID <= 0 {
		return NewValidationError("accountId", "must be a positive id")
	}
	if p.CostCenterID != nil && *p.CostCenterID <= 0 {
		return NewValidationError("costCenterId", "must be a positive id")
	}
	return nil
}

// Apply merges the patch over pay and returns the result.
func (p PaymentPatch) Apply(pay Payment) Payment {
	if p.Date != nil {
		pay.Date = *p.Date
	}
	if p.Amount != nil {
		pay.Amount = *p.Amount
	}
	if p.Description != nil {
		pay.Description = *p.Description
	}
	if p.AccountID != nil {
		pay.AccountID = *p.AccountID
	}
	if p.CostCenterID != nil {
		pay.CostCenterID = *p.CostCenterID
	}
	if p.Receipt != nil {
		pay.ReceiptPath = p.Receipt.Name
	}
	if p.Request != nil {
		pay.RequestPath = p.Request.Name
	}
	return pay
}

// SetAttachment records a path update for slot on the patch.
func (p *PaymentPatch) SetAttachment(slot Slot, name *string) {
	u := &PathUpdate{Name: name}
	if slot == SlotRequest {
		p.Request = u
		return
	}
	p.Receipt = u
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Plain dates are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, time.UTC)
}

// ParseDateIn is ParseDate with plain dates placed at midnight in loc, so a
// payment dated D falls on day D when filters are evaluated in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
