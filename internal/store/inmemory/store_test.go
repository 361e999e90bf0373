package inmemory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
	"github.com/dvloznov/payment-tracker/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return NewStore()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	path := "receipt-1-a.pdf"
	p, err := s.CreatePayment(ctx, domain.Payment{AccountID: 1, CostCenterID: 1, ReceiptPath: &path})
	require.NoError(t, err)

	*p.ReceiptPath = "tampered"
	path = "tampered too"

	got, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt-1-a.pdf", *got.ReceiptPath)
}

func TestStore_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.CreateAccount(ctx, domain.Account{Name: "a", Type: domain.AccountTypePayPal})
			if err == nil {
				ids <- a.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestSeed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seeded, err := store.Seed(ctx, s)
	require.NoError(t, err)
	assert.True(t, seeded)

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, len(store.SampleAccounts))

	costCenters, err := s.ListCostCenters(ctx)
	require.NoError(t, err)
	assert.Len(t, costCenters, len(store.SampleCostCenters))

	seeded, err = store.Seed(ctx, s)
	require.NoError(t, err)
	assert.False(t, seeded)
}
