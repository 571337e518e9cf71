package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(missingDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, ":8765", cfg.Addr)
	assert.Equal(t, "memory", cfg.LedgerMode)
	assert.Equal(t, 180*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.IdleSweep)
	assert.Equal(t, 50*time.Millisecond, cfg.BroadcastDebounce)
	assert.Equal(t, 200, cfg.LedgerRecentLimit)

	game := cfg.Game()
	assert.Equal(t, int64(1000), game.StartingBalance)
	assert.Equal(t, int64(10), game.Ante)
	assert.Equal(t, 5*time.Second, game.DecisionTimeout)
	assert.Equal(t, 3, game.CountdownSeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GATE_ADDR", ":9000")
	t.Setenv("GATE_DECISION_TIMEOUT", "750ms")
	t.Setenv("GATE_LEDGER_MODE", "sqlite")
	t.Setenv("GATE_SEED", "42")

	cfg, err := Load(missingDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.DecisionTimeout)
	assert.Equal(t, "sqlite", cfg.LedgerMode)
	assert.Equal(t, int64(42), cfg.Game().Seed)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GATE_STARTING_BALANCE=2500\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GATE_STARTING_BALANCE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), cfg.StartingBalance)
}

func TestLoad_RejectsUnknownLedgerMode(t *testing.T) {
	t.Setenv("GATE_LEDGER_MODE", "redis")
	_, err := Load(missingDotenv(t))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg, err := Load(missingDotenv(t))
	require.NoError(t, err)

	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "chatty"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
