package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.LedgerBackend)
	assert.Equal(t, 10*time.Second, cfg.ConfirmationTimeout)
	assert.Equal(t, 5, cfg.CASRetries)
	assert.Equal(t, 3, cfg.LedgerApplyRetries)
	assert.True(t, cfg.RewardAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.FundPoolSeed.IsZero())
	assert.Empty(t, cfg.APIKeys)
	assert.Nil(t, cfg.Verifiers)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("API_KEYS", "k1:alice, k2:bob ,")
	t.Setenv("VERIFIERS", "ranger-1, ,ranger-2")
	t.Setenv("REWARD_AMOUNT", "2.5")
	t.Setenv("FUND_POOL_SEED", "1000")
	t.Setenv("CONFIRMATION_TIMEOUT", "3s")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.LedgerBackend)
	assert.Equal(t, "/tmp/ledger.db", cfg.SQLitePath)
	assert.Equal(t, map[string]string{"k1": "alice", "k2": "bob"}, cfg.APIKeys)
	assert.Equal(t, []string{"ranger-1", "ranger-2"}, cfg.Verifiers)
	assert.Equal(t, "2.5", cfg.RewardAmount.String())
	assert.Equal(t, "1000", cfg.FundPoolSeed.String())
	assert.Equal(t, 3*time.Second, cfg.ConfirmationTimeout)
	// некорректное значение заменяется значением по умолчанию
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"LEDGER_BACKEND": "postgres", "DATABASE_URL": ""}},
		{"unknown backend", map[string]string{"LEDGER_BACKEND": "mongo"}},
		{"bad api key pair", map[string]string{"LEDGER_BACKEND": "memory", "API_KEYS": "lonely"}},
		{"bad reward", map[string]string{"LEDGER_BACKEND": "memory", "REWARD_AMOUNT": "ten"}},
		{"negative seed", map[string]string{"LEDGER_BACKEND": "memory", "FUND_POOL_SEED": "-5"}},
		{"zero cas retries", map[string]string{"LEDGER_BACKEND": "memory", "CAS_RETRIES": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
