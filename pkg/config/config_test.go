package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
database:
  host: localhost
  user: smilecoin
  password: secret
chain:
  rpc_url: http://localhost:8545
  chain_id: 1337
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, int64(2), cfg.Chain.ConfirmationBlocks)
	assert.Equal(t, 90*time.Second, cfg.Chain.ConfirmationTimeout)
	assert.Equal(t, 2*time.Second, cfg.Chain.ReceiptPollInterval)
	assert.Equal(t, uint64(300000), cfg.Chain.GasLimit)
	assert.Equal(t, 2*time.Minute, cfg.Chain.StaleBlockThreshold)
	assert.Equal(t, 4, cfg.Indexer.Workers)
	assert.Equal(t, 256, cfg.Indexer.QueueSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Monitoring.Enabled)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
server:
  port: 9999
indexer:
  workers: 8
`))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Indexer.Workers)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  host: localhost
chain:
  rpc_url: ""
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain.rpc_url")
}

func TestGetConnectionString(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Database: "smilecoin",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=smilecoin sslmode=disable", cfg.GetConnectionString())
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	_, err := NewLogger(LoggingConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Format: "console", Level: "debug"})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
