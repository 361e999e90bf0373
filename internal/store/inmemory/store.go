package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// table keeps one entity type keyed by id, remembering insertion order.
type table[T any] struct {
	rows   map[int64]T
	order  []int64
	nextID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T), nextID: 1}
}

func (t *table[T]) insert(assign func(id int64) T) T {
	id := t.nextID
	t.nextID++
	row := assign(id)
	t.rows[id] = row
	t.order = append(t.order, id)
	return row
}

func (t *table[T]) remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// Store is an in-memory implementation of store.Store.
// It is safe for concurrent use; every update runs under one lock, so
// concurrent patches to the same id never lose writes.
// Data is lost on restart - use the sqlite or bigquery store for persistence.
type Store struct {
	mu          sync.RWMutex
	accounts    *table[domain.Account]
	costCenters *table[domain.CostCenter]
	payments    *table[domain.Payment]
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:    newTable[domain.Account](),
		costCenters: newTable[domain.CostCenter](),
		payments:    newTable[domain.Payment](),
	}
}

// Close implements store.Store. It is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, a domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.accounts.insert(func(id int64) domain.Account {
		a.ID = id
		return a
	})
	return &row, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts.rows[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id int64, patch domain.AccountPatch) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts.rows[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrNotFound)
	}
	a = patch.Apply(a)
	s.accounts.rows[id] = a
	return &a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.remove(id), nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts.list(), nil
}

func (s *Store) CreateCostCenter(ctx context.Context, c domain.CostCenter) (*domain.CostCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.costCenters.insert(func(id int64) domain.CostCenter {
		c.ID = id
		return c
	})
	return &row, nil
}

func (s *Store) GetCostCenter(ctx context.Context, id int64) (*domain.CostCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.costCenters.rows[id]
	if !ok {
		return nil, fmt.Errorf("cost center %d: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) UpdateCostCenter(ctx context.Context, id int64, patch domain.CostCenterPatch) (*domain.CostCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.costCenters.rows[id]
	if !ok {
		return nil, fmt.Errorf("cost center %d: %w", id, domain.ErrNotFound)
	}
	c = patch.Apply(c)
	s.costCenters.rows[id] = c
	return &c, nil
}

func (s *Store) DeleteCostCenter(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.costCenters.remove(id), nil
}

func (s *Store) ListCostCenters(ctx context.Context) ([]domain.CostCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.costCenters.list(), nil
}

func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.payments.insert(func(id int64) domain.Payment {
		p.ID = id
		p.ReceiptPath = copyPath(p.ReceiptPath)
		p.RequestPath = copyPath(p.RequestPath)
		return p
	})
	return clonePayment(row), nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments.rows[id]
	if !ok {
		return nil, fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
	}
	return clonePayment(p), nil
}

func (s *Store) UpdatePayment(ctx context.Context, id int64, patch domain.PaymentPatch) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments.rows[id]
	if !ok {
		return nil, fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
	}
	p = patch.Apply(p)
	p.ReceiptPath = copyPath(p.ReceiptPath)
	p.RequestPath = copyPath(p.RequestPath)
	s.payments.rows[id] = p
	return clonePayment(p), nil
}

func (s *Store) DeletePayment(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.remove(id), nil
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.payments.list()
	for i := range rows {
		rows[i] = *clonePayment(rows[i])
	}
	return rows, nil
}

// clonePayment copies the attachment pointers so callers cannot mutate stored rows.
func clonePayment(p domain.Payment) *domain.Payment {
	p.ReceiptPath = copyPath(p.ReceiptPath)
	p.RequestPath = copyPath(p.RequestPath)
	return &p
}

func copyPath(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
