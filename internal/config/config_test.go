package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, AttachmentsLocal, cfg.AttachmentBackend)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 5, cfg.TopExpenses)
	assert.Equal(t, "it", cfg.ReportLocale)
	assert.True(t, cfg.SeedSampleData)
	assert.False(t, cfg.CleanupAsync)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/p.db")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("CLEANUP_ASYNC", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/p.db", cfg.SQLitePath)
	assert.Equal(t, 10, cfg.PageSize)
	assert.True(t, cfg.CleanupAsync)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOP_EXPENSES=3\nREPORT_LOCALE=en\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TOP_EXPENSES")
		os.Unsetenv("REPORT_LOCALE")
	})

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.TopExpenses)
	assert.Equal(t, "en", cfg.ReportLocale)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:              8080,
			StoreBackend:      StoreMemory,
			AttachmentBackend: AttachmentsLocal,
			UploadsDir:        "uploads",
			MaxUploadBytes:    1,
			PageSize:          5,
			TopExpenses:       5,
			ReportTimezone:    "UTC",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreBackend = "postgres" }, "STORE_BACKEND"},
		{"bigquery without project", func(c *Config) { c.StoreBackend = StoreBigQuery; c.BQDataset = "d" }, "BQ_PROJECT"},
		{"gcs without bucket", func(c *Config) { c.AttachmentBackend = AttachmentsGCS }, "GCS_BUCKET"},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PAGE_SIZE"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"bad timezone", func(c *Config) { c.ReportTimezone = "Mars/Olympus" }, "REPORT_TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
