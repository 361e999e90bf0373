package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/attachments"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/payments"
	"github.com/dvloznov/payment-tracker/internal/report"
	"github.com/dvloznov/payment-tracker/internal/store/inmemory"
)

type harness struct {
	store *inmemory.Store
	dir   string
	open  func(ctx context.Context, opts *RootOptions) (*App, error)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: inmemory.NewStore(), dir: t.TempDir()}
	files, err := attachments.NewLocal(h.dir, zerolog.Nop())
	require.NoError(t, err)

	svc := payments.NewService(h.store, files, nil, report.NewEngine(time.UTC, "it", 5, 5), zerolog.Nop())
	h.open = func(ctx context.Context, opts *RootOptions) (*App, error) {
		return &App{Store: h.store, Payments: svc, Log: zerolog.Nop()}, nil
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(h.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"accounts", "list"}, {"accounts", "add"},
		{"cost-centers", "list"}, {"cost-centers", "add"}, {"cost-centers", "categories"},
		{"payments", "list"}, {"payments", "add"}, {"payments", "delete"},
		{"report"}, {"seed"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "accounts", "list", "--format", "yaml")
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestSeedAndList(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 accounts and 4 cost centers.")

	out, err = h.run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	out, err = h.run(t, "accounts", "list", "--format", "json")
	require.NoError(t, err)
	var accounts []domain.Account
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	assert.Len(t, accounts, 3)

	out, err = h.run(t, "cost-centers", "categories")
	require.NoError(t, err)
	assert.Equal(t, "IT\nMarketing\n", out)
}

func TestAccountsAdd_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "accounts", "add", "--name", "Wallet", "--type", "Cash")
	assert.True(t, domain.IsValidation(err))

	out, err := h.run(t, "accounts", "add", "--name", "Wallet", "--type", "PayPal")
	require.NoError(t, err)
	assert.Equal(t, "Created account 1\n", out)
}

func TestPaymentsAddListReportDelete(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "seed")
	require.NoError(t, err)

	receipt := filepath.Join(t.TempDir(), "scontrino.pdf")
	require.NoError(t, os.WriteFile(receipt, []byte("pdf"), 0o644))

	out, err := h.run(t, "payments", "add", "--date", "2024-06-01", "--amount", "120.50",
		"--account", "1", "--cost-center", "1", "--description", "Licenze", "--receipt", receipt)
	require.NoError(t, err)
	assert.Equal(t, "Created payment 1\n", out)

	_, err = h.run(t, "payments", "add", "--date", "2024-06-02", "--amount", "30",
		"--account", "2", "--cost-center", "4", "--description", "Stand")
	require.NoError(t, err)

	_, err = h.run(t, "payments", "add", "--date", "2024-06-02", "--amount", "30",
		"--account", "9", "--cost-center", "4")
	assert.True(t, domain.IsValidation(err))

	out, err = h.run(t, "payments", "list", "--category", "IT")
	require.NoError(t, err)
	assert.Contains(t, out, "Licenze")
	assert.NotContains(t, out, "Stand")
	assert.Contains(t, out, "120.50")

	out, err = h.run(t, "payments", "list", "--page", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 1 (2 payments)")

	out, err = h.run(t, "report", "--format", "json")
	require.NoError(t, err)
	var summary struct {
		TotalExpenses string `json:"totalExpenses"`
		Count         int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "150.5", summary.TotalExpenses)
	assert.Equal(t, 2, summary.Count)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	out, err = h.run(t, "payments", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted payment 1\n", out)

	entries, err = os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = h.run(t, "payments", "delete", "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentsList_BadDate(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "payments", "list", "--start", "June")
	assert.ErrorContains(t, err, "invalid --start")
}
