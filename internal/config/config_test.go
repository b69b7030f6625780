package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "biofolio", cfg.AppName)
	assert.Equal(t, DriverBolt, cfg.Store.Driver)
	assert.Equal(t, "./data/biofolio.db", cfg.Store.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, 800*time.Millisecond, cfg.Auth.LoginDelay)
	assert.Equal(t, time.Second, cfg.Auth.RegisterDelay)
	assert.Equal(t, 250, cfg.Bio.MaxChars)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NotEmpty(t, cfg.Database.URL, "postgres URL is derived from parts")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", DriverPostgres)
	t.Setenv("AUTH_LOGIN_DELAY", "50ms")
	t.Setenv("BIO_MAX_CHARS", "120")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app?sslmode=disable")
	t.Setenv("SPILL_INTERVAL_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 50*time.Millisecond, cfg.Auth.LoginDelay)
	assert.Equal(t, 120, cfg.Bio.MaxChars)
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 5*time.Second, cfg.Spill.Interval, "bare integers read as seconds")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
