package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuthSecret)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "memory", cfg.DataSource)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, "surface", cfg.WriteFailurePolicy)
	assert.Equal(t, 5*time.Minute, cfg.ReportCacheTTL())
	assert.Equal(t, 8*time.Hour, cfg.AccessTokenTTL())
	assert.True(t, cfg.Development())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATA_SOURCE", " Remote ")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "60")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "0")
	t.Setenv("WRITE_FAILURE_POLICY", "mirror")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "remote", cfg.DataSource)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, time.Minute, cfg.ReportCacheTTL())
	assert.Equal(t, 8*time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, "mirror", cfg.WriteFailurePolicy)
	assert.False(t, cfg.Development())
}

func TestLocation(t *testing.T) {
	cfg := Config{ClinicTimezone: "Asia/Bangkok"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", loc.String())

	_, err = Config{ClinicTimezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
