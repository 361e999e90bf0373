// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreBigQuery = "bigquery"
)

// Attachment backends.
const (
	AttachmentsLocal = "local"
	AttachmentsGCS   = "gcs"
)

// Config holds every setting read from the environment.
type Config struct {
	Port int `env:"PORT,default=8080"`

	StoreBackend string `env:"STORE_BACKEND,default=memory"`
	SQLitePath   string `env:"SQLITE_PATH,default=payments.db"`
	BQProject    string `env:"BQ_PROJECT"`
	BQDataset    string `env:"BQ_DATASET,default=payments"`

	AttachmentBackend string `env:"ATTACHMENT_BACKEND,default=local"`
	UploadsDir        string `env:"UPLOADS_DIR,default=uploads"`
	GCSBucket         string `env:"GCS_BUCKET"`
	GCSPrefix         string `env:"GCS_PREFIX,default=uploads/"`
	MaxUploadBytes    int64  `env:"MAX_UPLOAD_BYTES,default=10485760"`

	PageSize       int    `env:"PAGE_SIZE,default=5"`
	TopExpenses    int    `env:"TOP_EXPENSES,default=5"`
	ReportLocale   string `env:"REPORT_LOCALE,default=it"`
	ReportTimezone string `env:"REPORT_TIMEZONE,default=UTC"`

	SeedSampleData bool `env:"SEED_SAMPLE_DATA,default=true"`
	CleanupAsync   bool `env:"CLEANUP_ASYNC,default=false"`
	CleanupRetries int  `env:"CLEANUP_RETRIES,default=3"`

	CORSOrigin string `env:"CORS_ORIGIN,default=*"`

	NotionToken         string `env:"NOTION_TOKEN"`
	NotionAccountsDB    string `env:"NOTION_ACCOUNTS_DB"`
	NotionCostCentersDB string `env:"NOTION_COST_CENTERS_DB"`
	NotionPaymentsDB    string `env:"NOTION_PAYMENTS_DB"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=console"`
}

// Load reads the optional dotenv files, then the environment.
// Missing dotenv files are ignored; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum values and the settings each backend requires.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite store")
		}
	case StoreBigQuery:
		if c.BQProject == "" || c.BQDataset == "" {
			return errors.New("config: BQ_PROJECT and BQ_DATASET are required for the bigquery store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AttachmentBackend {
	case AttachmentsLocal:
		if c.UploadsDir == "" {
			return errors.New("config: UPLOADS_DIR is required for local attachments")
		}
	case AttachmentsGCS:
		if c.GCSBucket == "" {
			return errors.New("config: GCS_BUCKET is required for gcs attachments")
		}
	default:
		return fmt.Errorf("config: unknown ATTACHMENT_BACKEND %q", c.AttachmentBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("config: PAGE_SIZE must be positive")
	}
	if c.TopExpenses <= 0 {
		return errors.New("config: TOP_EXPENSES must be positive")
	}
	if c.CleanupRetries < 0 {
		return errors.New("config: CLEANUP_RETRIES must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone calendar-day filters are evaluated in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
