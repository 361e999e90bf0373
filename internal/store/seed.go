package store

import (
	"context"
	"fmt"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// SampleAccounts and SampleCostCenters are loaded by Seed.
var (
	SampleAccounts = []domain.Account{
		{Name: "PayPal Business", Type: domain.AccountTypePayPal},
		{Name: "Carta Aziendale", Type: domain.AccountTypeCreditCard},
		{Name: "Conto Corrente", Type: domain.AccountTypeBankAccount},
	}

	SampleCostCenters = []domain.CostCenter{
		{Category: "IT", Subcategory: "Software"},
		{Category: "IT", Subcategory: "Infrastruttura"},
		{Category: "Marketing", Subcategory: "Pubblicità"},
		{Category: "Marketing", Subcategory: "Eventi"},
	}
)

// Seed loads the sample accounts and cost centers into an empty store.
// It does nothing when any account or cost center already exists.
func Seed(ctx context.Context, s Store) (bool, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return false, fmt.Errorf("Seed: listing accounts: %w", err)
	}
	costCenters, err := s.ListCostCenters(ctx)
	if err != nil {
		return false, fmt.Errorf("Seed: listing cost centers: %w", err)
	}
	if len(accounts) > 0 || len(costCenters) > 0 {
		return false, nil
	}

	for _, a := range SampleAccounts {
		if _, err := s.CreateAccount(ctx, a); err != nil {
			return false, fmt.Errorf("Seed: creating account %q: %w", a.Name, err)
		}
	}
	for _, c := range SampleCostCenters {
		if _, err := s.CreateCostCenter(ctx, c); err != nil {
			return false, fmt.Errorf("Seed: creating cost center %q: %w", c.Label(), err)
		}
	}
	return true, nil
}
