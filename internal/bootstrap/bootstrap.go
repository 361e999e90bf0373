// Package bootstrap builds the store and attachment backends selected by config.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/attachments"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/gcsuploader"
	"github.com/dvloznov/payment-tracker/internal/infra/bigquery"
	"github.com/dvloznov/payment-tracker/internal/infra/sqlite"
	"github.com/dvloznov/payment-tracker/internal/report"
	"github.com/dvloznov/payment-tracker/internal/store"
	"github.com/dvloznov/payment-tracker/internal/store/inmemory"
)

// OpenStore returns the store named by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Info().Msg("Using in-memory store")
		return inmemory.NewStore(), nil
	case config.StoreSQLite:
		log.Info().Str("path", cfg.SQLitePath).Msg("Opening SQLite store")
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		return s, nil
	case config.StoreBigQuery:
		log.Info().Str("project", cfg.BQProject).Str("dataset", cfg.BQDataset).Msg("Connecting to BigQuery store")
		s, err := bigquery.NewStore(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("OpenStore: unknown store backend %q", cfg.StoreBackend)
}

// AttachmentManager is an attachments.Manager that holds resources.
type AttachmentManager interface {
	attachments.Manager
	io.Closer
}

type nopCloser struct {
	attachments.Manager
}

func (nopCloser) Close() error { return nil }

// OpenAttachments returns the attachment backend named by cfg.AttachmentBackend.
func OpenAttachments(ctx context.Context, cfg *config.Config, log zerolog.Logger) (AttachmentManager, error) {
	switch cfg.AttachmentBackend {
	case config.AttachmentsLocal:
		m, err := attachments.NewLocal(cfg.UploadsDir, log)
		if err != nil {
			return nil, fmt.Errorf("OpenAttachments: %w", err)
		}
		log.Info().Str("dir", m.Dir()).Msg("Storing attachments on local disk")
		return nopCloser{m}, nil
	case config.AttachmentsGCS:
		m, err := gcsuploader.NewManager(ctx, cfg.GCSBucket, cfg.GCSPrefix, log)
		if err != nil {
			return nil, fmt.Errorf("OpenAttachments: %w", err)
		}
		log.Info().Str("bucket", cfg.GCSBucket).Str("prefix", cfg.GCSPrefix).Msg("Storing attachments in Cloud Storage")
		return m, nil
	}
	return nil, fmt.Errorf("OpenAttachments: unknown attachment backend %q", cfg.AttachmentBackend)
}

// NewEngine builds the report engine from the report settings.
func NewEngine(cfg *config.Config) (*report.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("NewEngine: %w", err)
	}
	return report.NewEngine(loc, cfg.ReportLocale, cfg.PageSize, cfg.TopExpenses), nil
}

// SeedIfEnabled loads the sample data when cfg.SeedSampleData is set.
func SeedIfEnabled(ctx context.Context, cfg *config.Config, s store.Store, log zerolog.Logger) error {
	if !cfg.SeedSampleData {
		return nil
	}
	seeded, err := store.Seed(ctx, s)
	if err != nil {
		return err
	}
	if seeded {
		log.Info().
			Int("accounts", len(store.SampleAccounts)).
			Int("cost_centers", len(store.SampleCostCenters)).
			Msg("Seeded sample data")
	}
	return nil
}
