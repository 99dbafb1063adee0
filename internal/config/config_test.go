package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "9095", cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Simulation.Samples)
	assert.Equal(t, 0.0175, cfg.Simulation.RiskFreeRate)

	start, end, err := cfg.Simulation.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frontier.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "8081"

[simulation]
samples = 500
risk_free_rate = 0.03

[yahoo]
timeout = "5s"
`), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("FRONTIER_MAX_SAMPLES", "900")

	cfg, err := Load(path, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 500, cfg.Simulation.Samples)
	assert.Equal(t, 900, cfg.Simulation.MaxSamples)
	assert.Equal(t, 0.03, cfg.Simulation.RiskFreeRate)
	assert.Equal(t, "tok", cfg.Telegram.Token)
	assert.Equal(t, 5*time.Second, cfg.Yahoo.GetTimeout())
}

func TestLoad_BadDate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[simulation]\nstart_date = \"01/01/2000\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestYahooTimeoutFallback(t *testing.T) {
	assert.Equal(t, 20*time.Second, YahooConfig{Timeout: "soon"}.GetTimeout())
}

func TestValidateBot(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, []string{"TELEGRAM_BOT_TOKEN", "WEBHOOK_PUBLIC_URL"}, cfg.ValidateBot())

	cfg.Telegram.Token = "x"
	cfg.Telegram.WebhookPublicURL = "https://example.com/telegram/webhook"
	assert.Empty(t, cfg.ValidateBot())
}
