package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "monitored_stocks.json", cfg.Watchlist.File)
	assert.Equal(t, DefaultMiddayCron, cfg.Schedule.MiddayCron)
	assert.Equal(t, DefaultCloseCron, cfg.Schedule.CloseCron)
	assert.Equal(t, DefaultRefreshCron, cfg.Schedule.RefreshCron)
	assert.Equal(t, time.Second, cfg.Pacing.Fetch)
	assert.Equal(t, 2*time.Second, cfg.Pacing.Symbol)
	assert.Equal(t, "Asia/Shanghai", cfg.Schedule.Timezone)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
  chat_id: "1"
data_source:
  base_url: "https://data.example.com/stock"
  api_key: "file-key"
pacing:
  fetch: 500ms
  symbol: 3s
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "1", cfg.Telegram.ChatID)
	assert.Equal(t, "file-key", cfg.DataSource.APIKey)
	assert.Equal(t, "sk-env", cfg.Analysis.OpenAI.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Pacing.Fetch)
	assert.Equal(t, 3*time.Second, cfg.Pacing.Symbol)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadCron(t *testing.T) {
	cfg, err := Load(writeConfig(t, "schedule:\n  midday_cron: \"0 12 * * *\"\n"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule.midday_cron")
}

func TestValidate_RejectsUnknownLevel(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: loud\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadTimezone(t *testing.T) {
	cfg, err := Load(writeConfig(t, "schedule:\n  timezone: Mars/Olympus\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}
