package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioforge/studio/internal/config"
	"github.com/audioforge/studio/internal/session"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTH_SECRET", "JWT_SECRET", "STORE_DRIVER", "POSTGRES_DSN", "MONGODB_URI",
		"APP_ENV", "AUTH_SECURE_COOKIE", "REDIS_DB", "AZURE_STORAGE_ACCOUNT_NAME",
		"AZURE_STORAGE_KEY", "AZURE_BLOB_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	require.ErrorIs(t, err, session.ErrConfiguration)
}

func TestLoad_FallsBackToJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Auth.Secret)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Auth.SecureCookie)
	assert.Equal(t, "works", cfg.Blob.Container)
	assert.False(t, cfg.Blob.Enabled())
	assert.Equal(t, time.Hour, cfg.Redis.StatusTTL)
	assert.Equal(t, 300*time.Second, cfg.Models.Timeout())
}

func TestLoad_DriverSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMongo, cfg.Store.Driver)

	t.Setenv("STORE_DRIVER", "postgres")
	_, err = config.Load()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "cassandra")
	_, err = config.Load()
	require.Error(t, err)
}

func TestLoad_ProductionCookie(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.SecureCookie)
	assert.True(t, cfg.App.IsProduction())
}
