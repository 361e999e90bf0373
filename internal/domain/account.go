package domain

import "strings"

// AccountType is the kind of funding source a payment is drawn from.
type AccountType string

const (
	AccountTypePayPal      AccountType = "PayPal"
	AccountTypeCreditCard  AccountType = "CreditCard"
	AccountTypeBankAccount AccountType = "BankAccount"
)

// AccountTypes lists every accepted AccountType in display order.
var AccountTypes = []AccountType{AccountTypePayPal, AccountTypeCreditCard, AccountTypeBankAccount}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a funding source (bank, card, PayPal).
type Account struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Validate checks the fields required to store an account.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if !a.Type.Valid() {
		return NewValidationError("type", "must be one of PayPal, CreditCard, BankAccount")
	}
	return nil
}

// AccountPatch carries the fields of a partial account update.
// Nil fields are left untouched.
type AccountPatch struct {
	Name *string      `json:"name,omitempty"`
	Type *AccountType `json:"type,omitempty"`
}

// Validate checks only the supplied fields.
func (p AccountPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return NewValidationError("type", "must be one of PayPal, CreditCard, BankAccount")
	}
	return nil
}

// Apply merges the patch over a and returns the result.
func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	return a
}
