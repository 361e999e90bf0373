package store

import (
	"context"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// AccountRepository provides an interface for account persistence.
type AccountRepository interface {
	// CreateAccount assigns the next id and stores the account.
	CreateAccount(ctx context.Context, a domain.Account) (*domain.Account, error)

	// GetAccount returns domain.ErrNotFound when id is unknown.
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)

	// UpdateAccount merges the patch over the stored account.
	UpdateAccount(ctx context.Context, id int64, patch domain.AccountPatch) (*domain.Account, error)

	// DeleteAccount reports whether a record existed and was removed.
	DeleteAccount(ctx context.Context, id int64) (bool, error)

	// ListAccounts returns all accounts in insertion order.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// CostCenterRepository provides an interface for cost center persistence.
type CostCenterRepository interface {
	CreateCostCenter(ctx context.Context, c domain.CostCenter) (*domain.CostCenter, error)
	GetCostCenter(ctx context.Context, id int64) (*domain.CostCenter, error)
	UpdateCostCenter(ctx context.Context, id int64, patch domain.CostCenterPatch) (*domain.CostCenter, error)
	DeleteCostCenter(ctx context.Context, id int64) (bool, error)
	ListCostCenters(ctx context.Context) ([]domain.CostCenter, error)
}

// PaymentRepository provides an interface for payment persistence.
// Implementations do not check that referenced accounts and cost centers exist.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id int64) (bool, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
}

// Store is the full persistence capability used by the service layer.
// Ids are assigned per entity type, strictly increasing and never reused.
type Store interface {
	AccountRepository
	CostCenterRepository
	PaymentRepository

	// Close releases the backing resources.
	Close() error
}
