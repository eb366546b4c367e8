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

	assert.Equal(t, "retailops-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Transaction.DefaultTimeout)
	assert.Equal(t, 30*time.Second, cfg.Transaction.ApprovalTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Idempotency.LockTTL)
	assert.Contains(t, cfg.Reporting.ViewNames, "stock_on_hand_view")
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Idempotency-Key")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RETAILOPS_DATABASE_PASSWORD", "sekret")
	t.Setenv("RETAILOPS_DATABASE_HOST", "db.internal")
	t.Setenv("RETAILOPS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 50
		cfg.Database.MaxOpenConns = 10
		assert.Error(t, cfg.validate())
	})

	t.Run("approval timeout cannot undercut the default timeout", func(t *testing.T) {
		cfg := base()
		cfg.Transaction.DefaultTimeout = time.Minute
		cfg.Transaction.ApprovalTimeout = time.Second
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "sekret"
		assert.Error(t, cfg.validate()) // sslmode still disable

		cfg.Database.SSLMode = "require"
		require.NoError(t, cfg.validate())

		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "retail_ops",
		Password: "p@ss/word#1",
		DBName:   "retailops",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word#1")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
