package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// BatchSize is the number of rows written between progress log lines.
const BatchSize = 100

// Result counts what a sync did to one database.
type Result struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// row is one entity to mirror into a Notion database.
type row struct {
	key   string
	props func() notionapi.Properties
}

// SyncAccounts mirrors every account into the accounts database and returns
// the page id of each account.
func SyncAccounts(ctx context.Context, repo store.AccountRepository, notionClient NotionService, notionDBID string, dryRun bool) (map[int64]string, Result, error) {
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("SyncAccounts: failed to list accounts: %w", err)
	}

	rows := make([]row, len(accounts))
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		rows[i] = row{key: pageKey(a.ID), props: func() notionapi.Properties { return AccountToNotionProperties(a) }}
		ids[i] = a.ID
	}

	pages, res, err := syncRows(ctx, notionClient, notionDBID, "accounts", rows, dryRun)
	if err != nil {
		return nil, res, fmt.Errorf("SyncAccounts: %w", err)
	}
	return byID(ids, pages), res, nil
}

// SyncCostCenters mirrors every cost center into the cost centers database
// and returns the page id of each cost center.
func SyncCostCenters(ctx context.Context, repo store.CostCenterRepository, notionClient NotionService, notionDBID string, dryRun bool) (map[int64]string, Result, error) {
	costCenters, err := repo.ListCostCenters(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("SyncCostCenters: failed to list cost centers: %w", err)
	}

	rows := make([]row, len(costCenters))
	ids := make([]int64, len(costCenters))
	for i, c := range costCenters {
		rows[i] = row{key: pageKey(c.ID), props: func() notionapi.Properties { return CostCenterToNotionProperties(c) }}
		ids[i] = c.ID
	}

	pages, res, err := syncRows(ctx, notionClient, notionDBID, "cost_centers", rows, dryRun)
	if err != nil {
		return nil, res, fmt.Errorf("SyncCostCenters: %w", err)
	}
	return byID(ids, pages), res, nil
}

// SyncPayments mirrors every payment into the payments database, linking each
// row to the account and cost center pages returned by the other syncs.
func SyncPayments(ctx context.Context, repo store.PaymentRepository, notionClient NotionService, notionDBID string, accountPages, costCenterPages map[int64]string, dryRun bool) (Result, error) {
	payments, err := repo.ListPayments(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("SyncPayments: failed to list payments: %w", err)
	}

	rows := make([]row, len(payments))
	for i, p := range payments {
		rows[i] = row{key: pageKey(p.ID), props: func() notionapi.Properties {
			return PaymentToNotionProperties(p, accountPages, costCenterPages)
		}}
	}

	_, res, err := syncRows(ctx, notionClient, notionDBID, "payments", rows, dryRun)
	if err != nil {
		return res, fmt.Errorf("SyncPayments: %w", err)
	}
	return res, nil
}

// syncRows makes the database match rows: pages whose id is unknown are
// archived, known pages are updated and missing ones created. Per-page
// failures are logged and counted, not returned.
func syncRows(ctx context.Context, notionClient NotionService, notionDBID, entity string, rows []row, dryRun bool) (map[string]string, Result, error) {
	log := logger.FromContext(ctx).With().Str("entity", entity).Bool("dry_run", dryRun).Logger()
	var res Result

	log.Info().Int("row_count", len(rows)).Msg("Starting sync to Notion")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return nil, res, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	valid := make(map[string]bool, len(rows))
	for _, r := range rows {
		valid[r.key] = true
	}

	pageIDs := make(map[string]string, len(rows))
	for _, page := range notionPages {
		key := extractID(page)
		if key != "" && valid[key] {
			if _, dup := pageIDs[key]; !dup {
				pageIDs[key] = string(page.ID)
				continue
			}
		}

		if dryRun {
			log.Info().Str("key", key).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would delete stale Notion page")
			res.Deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("key", key).Str("page_id", string(page.ID)).Msg("Failed to delete stale Notion page")
			res.Failed++
			continue
		}
		res.Deleted++
	}

	for i, r := range rows {
		if i > 0 && i%BatchSize == 0 {
			log.Info().Int("processed", i).Int("total", len(rows)).Msg("Sync progress")
		}

		pageID, exists := pageIDs[r.key]
		if dryRun {
			if exists {
				res.Updated++
			} else {
				res.Created++
			}
			continue
		}

		if exists {
			if _, err := notionClient.UpdatePage(ctx, pageID, r.props()); err != nil {
				log.Warn().Err(err).Str("key", r.key).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, r.props())
		if err != nil {
			log.Warn().Err(err).Str("key", r.key).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		pageIDs[r.key] = string(page.ID)
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failed", res.Failed).
		Msg("Sync completed")

	return pageIDs, res, nil
}

// queryAllNotionPages follows the query cursor until every page is read.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

func byID(ids []int64, pages map[string]string) map[int64]string {
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if pageID, ok := pages[pageKey(id)]; ok {
			out[id] = pageID
		}
	}
	return out
}
