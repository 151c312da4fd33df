package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("EXPORT_TIMEOUT_SEC", "")
	t.Setenv("EXPORT_MAX_DEPTH", "")

	cfg := ReadConfig()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.ExportTimeout())
	assert.Equal(t, 256, cfg.ExportMaxDepth)
	assert.Equal(t, "A4", cfg.ExportPageSize)
	assert.Equal(t, 15, cfg.ExportMarginMM)
	assert.Equal(t, 7, cfg.ArchiveRetentionDays)
}

func TestReadConfigFromEnv(t *testing.T) {
	t.Setenv("EXPORT_TIMEOUT_SEC", "5")
	t.Setenv("EXPORT_MAX_CONCURRENT", "2")
	t.Setenv("EXPORT_MAX_DEPTH", "100000")
	t.Setenv("EXPORT_PAGE_SIZE", "letter")
	t.Setenv("CHROME_NO_SANDBOX", "true")
	t.Setenv("EXPORT_ARCHIVE_RETENTION_DAYS", "0")
	t.Setenv("AWS_S3_ENDPOINT_URL", "minio:9000")
	t.Setenv("AWS_S3_BUCKET_NAME", "aiplan")

	cfg := ReadConfig()

	assert.Equal(t, 5*time.Second, cfg.ExportTimeout())
	assert.Equal(t, 2, cfg.ExportMaxConcurrent)
	assert.Equal(t, 1000, cfg.ExportMaxDepth)
	assert.Equal(t, "LETTER", cfg.ExportPageSize)
	assert.True(t, cfg.ChromeNoSandbox)
	assert.Equal(t, 0, cfg.ArchiveRetentionDays)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestReadConfigInvalidValues(t *testing.T) {
	t.Setenv("EXPORT_ARCHIVE_RETENTION_DAYS", "7d")
	t.Setenv("EXPORT_MAX_CONCURRENT", "four")
	t.Setenv("EXPORT_TIMEOUT_SEC", "30s")
	t.Setenv("CHROME_NO_SANDBOX", "yes please")

	cfg := ReadConfig()

	assert.Equal(t, 7, cfg.ArchiveRetentionDays)
	assert.Equal(t, 4, cfg.ExportMaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.ExportTimeout())
	assert.False(t, cfg.ChromeNoSandbox)
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("AIPLAN_TEST_INT", "12")
	n, err := GetIntEnv("AIPLAN_TEST_INT")
	assert.NoError(t, err)
	assert.Equal(t, 12, n)

	t.Setenv("AIPLAN_TEST_INT", "12x")
	_, err = GetIntEnv("AIPLAN_TEST_INT")
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "s****t", maskSecret("secret"))
	assert.Equal(t, "**", maskSecret("ab"))
	assert.True(t, isSecretField("AWSSecretKey"))
	assert.True(t, isSecretField("DatabaseDSN"))
	assert.False(t, isSecretField("ChromePath"))
}

func TestDerivedSettings(t *testing.T) {
	cfg := &Config{ExportMaxDepth: 40, ExportPageSize: "LETTER", ExportMarginMM: 10}

	assert.Equal(t, 40, cfg.RenderPolicy().MaxDepth)

	page := cfg.PageSettings()
	assert.Equal(t, "LETTER", page.Size.Name)
	assert.Equal(t, 10.0, page.Margins.Left)
	assert.Equal(t, 10.0, page.Margins.Bottom)

	cfg.ExportPageSize = "B5"
	assert.Equal(t, "A4", cfg.PageSettings().Size.Name)
}
