// Package relations joins payments with the account and cost center they reference.
package relations

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// Resolver builds PaymentWithRelations views. A payment whose account or cost
// center is missing fails with *domain.RelationNotFoundError; it is never
// dropped or paired with a placeholder.
type Resolver struct {
	accounts    store.AccountRepository
	costCenters store.CostCenterRepository
}

// NewResolver creates a Resolver reading from the given repositories.
func NewResolver(accounts store.AccountRepository, costCenters store.CostCenterRepository) *Resolver {
	return &Resolver{accounts: accounts, costCenters: costCenters}
}

// Resolve joins a single payment.
func (r *Resolver) Resolve(ctx context.Context, p domain.Payment) (*domain.PaymentWithRelations, error) {
	account, err := r.accounts.GetAccount(ctx, p.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.RelationNotFoundError{PaymentID: p.ID, Relation: "account", RelatedID: p.AccountID}
	}
	if err != nil {
		return nil, fmt.Errorf("Resolve: payment %d: %w", p.ID, err)
	}

	costCenter, err := r.costCenters.GetCostCenter(ctx, p.CostCenterID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.RelationNotFoundError{PaymentID: p.ID, Relation: "costCenter", RelatedID: p.CostCenterID}
	}
	if err != nil {
		return nil, fmt.Errorf("Resolve: payment %d: %w", p.ID, err)
	}

	return &domain.PaymentWithRelations{Payment: p, Account: *account, CostCenter: *costCenter}, nil
}

// ResolveAll joins every payment, preserving order. Accounts and cost centers
// are loaded once. The first payment with a missing relation fails the call.
func (r *Resolver) ResolveAll(ctx context.Context, payments []domain.Payment) ([]domain.PaymentWithRelations, error) {
	accounts, err := r.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ResolveAll: listing accounts: %w", err)
	}
	costCenters, err := r.costCenters.ListCostCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("ResolveAll: listing cost centers: %w", err)
	}

	accountByID := make(map[int64]domain.Account, len(accounts))
	for _, a := range accounts {
		accountByID[a.ID] = a
	}
	costCenterByID := make(map[int64]domain.CostCenter, len(costCenters))
	for _, c := range costCenters {
		costCenterByID[c.ID] = c
	}

	out := make([]domain.PaymentWithRelations, 0, len(payments))
	for _, p := range payments {
		a, ok := accountByID[p.AccountID]
		if !ok {
			return nil, &domain.RelationNotFoundError{PaymentID: p.ID, Relation: "account", RelatedID: p.AccountID}
		}
		c, ok := costCenterByID[p.CostCenterID]
		if !ok {
			return nil, &domain.RelationNotFoundError{PaymentID: p.ID, Relation: "costCenter", RelatedID: p.CostCenterID}
		}
		out = append(out, domain.PaymentWithRelations{Payment: p, Account: a, CostCenter: c})
	}
	return out, nil
}
