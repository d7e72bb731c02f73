package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Registry.ListDefaultLimit)
	assert.Equal(t, 500, cfg.Registry.ListMaxLimit)
	assert.Equal(t, 50, cfg.Registry.StatsRecentScans)
	assert.Equal(t, 100, cfg.Registry.SlugSuffixAttempts)
	assert.True(t, cfg.Registry.StrictScanAccounting)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REGISTRY_STRICT_SCAN_ACCOUNTING", "false")
	t.Setenv("REGISTRY_LIST_DEFAULT_LIMIT", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PUBLIC_BASE_URL", "https://qr.example/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.Registry.StrictScanAccounting)
	assert.Equal(t, 20, cfg.Registry.ListDefaultLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "https://qr.example", cfg.Deployment.PublicBaseURL)
}

func TestLoadConfig_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestValidateConfig_AggregatesProblems(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Database.Driver = "mysql"
	cfg.Logging.Level = "trace"
	cfg.Registry.ListDefaultLimit = cfg.Registry.ListMaxLimit + 1

	err = ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "REGISTRY_LIST_DEFAULT_LIMIT")
}

func TestValidateConfig_PostgresRequiresConnectionFields(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Database.Driver = "postgres"
	cfg.Database.Host = ""
	cfg.Database.Port = 0

	err = ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "DB_PORT")
}

func TestLoadEnvFile_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KYU_AR_TEST_A=from-file\nKYU_AR_TEST_B=\"quoted\"\n"), 0o600))

	t.Setenv("KYU_AR_TEST_A", "from-env")
	t.Setenv("KYU_AR_TEST_B", "")
	require.NoError(t, os.Unsetenv("KYU_AR_TEST_B"))

	require.NoError(t, loadEnvFile(path))
	t.Cleanup(func() { _ = os.Unsetenv("KYU_AR_TEST_B") })

	assert.Equal(t, "from-env", os.Getenv("KYU_AR_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("KYU_AR_TEST_B"))
}

func TestLoadEnvFile_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
