package notionsync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store/inmemory"
)

// fakeNotion keeps pages per database in memory.
type fakeNotion struct {
	pages     map[string][]notionapi.Page
	props     map[string]notionapi.Properties
	archived  []string
	updated   []string
	nextID    int
	failWrite bool
	pageSize  int
}

func newFakeNotion() *fakeNotion {
	return &fakeNotion{
		pages:    make(map[string][]notionapi.Page),
		props:    make(map[string]notionapi.Properties),
		pageSize: 2,
	}
}

func (f *fakeNotion) addPage(db, key string) string {
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)
	page := notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			PropID: &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: key}}},
		},
	}
	f.pages[db] = append(f.pages[db], page)
	return id
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if f.failWrite {
		return nil, errors.New("notion unavailable")
	}
	key := properties[PropID].(notionapi.TitleProperty).Title[0].Text.Content
	id := f.addPage(databaseID, key)
	f.props[id] = properties
	return &notionapi.Page{ID: notionapi.ObjectID(id)}, nil
}

func (f *fakeNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if f.failWrite {
		return nil, errors.New("notion unavailable")
	}
	f.updated = append(f.updated, pageID)
	f.props[pageID] = properties
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	all := f.pages[databaseID]
	start := 0
	if req.StartCursor != "" {
		fmt.Sscanf(string(req.StartCursor), "%d", &start)
	}
	end := start + f.pageSize
	if end > len(all) {
		end = len(all)
	}
	resp := &notionapi.DatabaseQueryResponse{Results: all[start:end]}
	if end < len(all) {
		resp.HasMore = true
		resp.NextCursor = notionapi.Cursor(fmt.Sprintf("%d", end))
	}
	return resp, nil
}

func (f *fakeNotion) DeletePage(ctx context.Context, pageID string) error {
	if f.failWrite {
		return errors.New("notion unavailable")
	}
	f.archived = append(f.archived, pageID)
	return nil
}

func seededStore(t *testing.T) *inmemory.Store {
	t.Helper()
	ctx := context.Background()
	s := inmemory.NewStore()

	_, err := s.CreateAccount(ctx, domain.Account{Name: "Cash", Type: domain.AccountTypeBankAccount})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, domain.Account{Name: "Card", Type: domain.AccountTypeCreditCard})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, domain.Account{Name: "PayPal", Type: domain.AccountTypePayPal})
	require.NoError(t, err)
	_, err = s.CreateCostCenter(ctx, domain.CostCenter{Category: "IT", Subcategory: "Software"})
	require.NoError(t, err)

	receipt := "receipt-1-a.pdf"
	_, err = s.CreatePayment(ctx, domain.Payment{
		Date:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("19.99"),
		Description:  "hosting",
		AccountID:    2,
		CostCenterID: 1,
		ReceiptPath:  &receipt,
	})
	require.NoError(t, err)
	return s
}

func TestSyncAccounts_CreatesUpdatesAndArchives(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	notion := newFakeNotion()

	existing := notion.addPage("accounts", "1")
	stale := notion.addPage("accounts", "42")
	untitled := notion.addPage("accounts", "")

	pages, res, err := SyncAccounts(ctx, s, notion, "accounts", false)
	require.NoError(t, err)

	assert.Equal(t, Result{Created: 2, Updated: 1, Deleted: 2}, res)
	assert.ElementsMatch(t, []string{stale, untitled}, notion.archived)
	assert.Equal(t, []string{existing}, notion.updated)
	require.Len(t, pages, 3)
	assert.Equal(t, existing, pages[1])
}

func TestSyncAccounts_DuplicatePagesAreArchived(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	notion := newFakeNotion()

	first := notion.addPage("accounts", "1")
	dup := notion.addPage("accounts", "1")

	pages, _, err := SyncAccounts(ctx, s, notion, "accounts", false)
	require.NoError(t, err)
	assert.Equal(t, first, pages[1])
	assert.Equal(t, []string{dup}, notion.archived)
}

func TestSyncAccounts_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	notion := newFakeNotion()
	notion.addPage("accounts", "99")

	pages, res, err := SyncAccounts(ctx, s, notion, "accounts", true)
	require.NoError(t, err)

	assert.Equal(t, Result{Created: 3, Deleted: 1}, res)
	assert.Empty(t, pages)
	assert.Empty(t, notion.archived)
	assert.Len(t, notion.pages["accounts"], 1)
}

func TestSyncAccounts_WriteFailuresAreCounted(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	notion := newFakeNotion()
	notion.addPage("accounts", "7")
	notion.failWrite = true

	_, res, err := SyncAccounts(ctx, s, notion, "accounts", false)
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 4}, res)
}

func TestSyncPayments_LinksRelations(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	notion := newFakeNotion()

	accountPages, _, err := SyncAccounts(ctx, s, notion, "accounts", false)
	require.NoError(t, err)
	costCenterPages, _, err := SyncCostCenters(ctx, s, notion, "cost_centers", false)
	require.NoError(t, err)

	res, err := SyncPayments(ctx, s, notion, "payments", accountPages, costCenterPages, false)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1}, res)

	pageID := string(notion.pages["payments"][0].ID)
	props := notion.props[pageID]

	assert.Equal(t, 19.99, props[PropAmount].(notionapi.NumberProperty).Number)
	account := props[PropAccount].(notionapi.RelationProperty)
	assert.Equal(t, notionapi.PageID(accountPages[2]), account.Relation[0].ID)
	costCenter := props[PropCostCenter].(notionapi.RelationProperty)
	assert.Equal(t, notionapi.PageID(costCenterPages[1]), costCenter.Relation[0].ID)
	assert.Contains(t, props, PropReceipt)
	assert.NotContains(t, props, PropRequest)
}

func TestPaymentToNotionProperties_UnknownRelationsOmitted(t *testing.T) {
	props := PaymentToNotionProperties(domain.Payment{
		ID:           3,
		Date:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.NewFromInt(5),
		AccountID:    1,
		CostCenterID: 1,
	}, nil, nil)

	assert.NotContains(t, props, PropAccount)
	assert.NotContains(t, props, PropCostCenter)
	assert.NotContains(t, props, PropDescription)
	assert.Equal(t, "3", props[PropID].(notionapi.TitleProperty).Title[0].Text.Content)
}

func TestCostCenterToNotionProperties(t *testing.T) {
	props := CostCenterToNotionProperties(domain.CostCenter{ID: 4, Category: "Marketing", Subcategory: "Eventi"})

	assert.Equal(t, "Marketing", props[PropCategory].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "Marketing - Eventi", props[PropName].(notionapi.RichTextProperty).RichText[0].Text.Content)
}
