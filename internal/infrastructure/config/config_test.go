package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearLedgerEnv blanks every variable the tests touch; t.Setenv restores them.
func clearLedgerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEDGER_APP_ENV",
		"LEDGER_APP_PORT",
		"LEDGER_DATABASE_HOST",
		"LEDGER_DATABASE_PASSWORD",
		"LEDGER_DATABASE_SSLMODE",
		"LEDGER_DATABASE_MAX_OPEN_CONNS",
		"LEDGER_DATABASE_MAX_IDLE_CONNS",
		"LEDGER_JWT_SECRET",
		"LEDGER_LEDGER_TX_TIMEOUT",
		"LEDGER_LEDGER_UNIT_POLICY",
		"LEDGER_LEDGER_DEFAULT_LOCATION",
		"LEDGER_PRIVILEGE_CACHE_TTL",
		"LEDGER_STORAGE_BUCKET",
		"LEDGER_TELEMETRY_LOGS_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearLedgerEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stock-ledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30*time.Second, cfg.Ledger.TxTimeout)
		assert.Equal(t, "convert", cfg.Ledger.UnitPolicy)
		assert.Equal(t, "DEFAULT", cfg.Ledger.DefaultLocation)
		assert.Equal(t, "Piece", cfg.Ledger.DefaultUnit)
		assert.Equal(t, 5*time.Minute, cfg.PrivilegeCache.TTL)
		assert.False(t, cfg.Storage.Enabled())
		assert.False(t, cfg.Redis.Enabled())
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_APP_PORT", "9000")
		t.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		t.Setenv("LEDGER_LEDGER_TX_TIMEOUT", "5s")
		t.Setenv("LEDGER_LEDGER_UNIT_POLICY", "same_family")
		t.Setenv("LEDGER_LEDGER_DEFAULT_LOCATION", "MAIN-STORE")
		t.Setenv("LEDGER_PRIVILEGE_CACHE_TTL", "1m")
		t.Setenv("LEDGER_STORAGE_BUCKET", "ledger-imports")
		t.Setenv("LEDGER_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
		assert.Equal(t, "same_family", cfg.Ledger.UnitPolicy)
		assert.Equal(t, "MAIN-STORE", cfg.Ledger.DefaultLocation)
		assert.Equal(t, time.Minute, cfg.PrivilegeCache.TTL)
		assert.True(t, cfg.Storage.Enabled())
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("rejects unknown unit policy", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_LEDGER_UNIT_POLICY", "anything_goes")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.unit_policy")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setProductionBase := func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_APP_ENV", "production")
		t.Setenv("LEDGER_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("LEDGER_DATABASE_PASSWORD", "secure-password")
		t.Setenv("LEDGER_DATABASE_SSLMODE", "require")
	}

	t.Run("passes with a complete production config", func(t *testing.T) {
		setProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires a long jwt secret", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("LEDGER_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database password", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("LEDGER_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("LEDGER_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "ledger", Password: "secret", DBName: "ledger", SSLMode: "disable"}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "ledger")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
