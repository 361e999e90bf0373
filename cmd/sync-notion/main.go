package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/payment-tracker/internal/bootstrap"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/notionsync"
)

func main() {
	log := logger.New()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	accountsDB := flag.String("accounts-db", cfg.NotionAccountsDB, "Notion accounts database ID (or set NOTION_ACCOUNTS_DB)")
	costCentersDB := flag.String("cost-centers-db", cfg.NotionCostCentersDB, "Notion cost centers database ID (or set NOTION_COST_CENTERS_DB)")
	paymentsDB := flag.String("payments-db", cfg.NotionPaymentsDB, "Notion payments database ID (or set NOTION_PAYMENTS_DB)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	timeout := flag.Duration("request-timeout", notionsync.DefaultTimeout, "Timeout for a single Notion API request")
	flag.Parse()

	configured, err := logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}
	log = configured

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *accountsDB == "" || *costCentersDB == "" || *paymentsDB == "" {
		log.Fatal().Msg("Error: --accounts-db, --cost-centers-db and --payments-db are required")
	}

	// Create context with timeout so the sync doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	st, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.Close()

	notionClient := notionsync.NewNotionClient(*notionToken, *timeout)

	accountPages, accounts, err := notionsync.SyncAccounts(ctx, st, notionClient, *accountsDB, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Accounts sync failed")
	}

	costCenterPages, costCenters, err := notionsync.SyncCostCenters(ctx, st, notionClient, *costCentersDB, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Cost centers sync failed")
	}

	payments, err := notionsync.SyncPayments(ctx, st, notionClient, *paymentsDB, accountPages, costCenterPages, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Payments sync failed")
	}

	fmt.Printf("Sync completed: accounts %+v, cost centers %+v, payments %+v\n", accounts, costCenters, payments)
}
