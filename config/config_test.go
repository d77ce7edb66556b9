package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "42")
	t.Setenv("BACKUP_CHANNEL_ID", "-1001234567890")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, int64(-1001234567890), cfg.BackupChannelID)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, "/webhook", cfg.WebhookPath)
	assert.Equal(t, StateBackendSQLite, cfg.StateBackend)
	assert.False(t, cfg.BatchRestartAllowed)
	assert.False(t, cfg.AdminAPIEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("STATE_BACKEND", "BOLT")
	t.Setenv("BATCH_RESTART_ALLOWED", "true")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, StateBackendBolt, cfg.StateBackend)
	assert.True(t, cfg.BatchRestartAllowed)
	assert.True(t, cfg.AdminAPIEnabled())
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("API_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.APIPort)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			BotToken:        "t",
			AdminID:         1,
			BackupChannelID: -100,
			StateBackend:    StateBackendSQLite,
			WebhookPath:     "/webhook",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no token", func(c *Config) { c.BotToken = "" }, "BOT_TOKEN"},
		{"no admin", func(c *Config) { c.AdminID = 0 }, "ADMIN_ID"},
		{"no backup", func(c *Config) { c.BackupChannelID = 0 }, "BACKUP_CHANNEL_ID"},
		{"bad backend", func(c *Config) { c.StateBackend = "redis" }, "STATE_BACKEND"},
		{"bad path", func(c *Config) { c.WebhookPath = "hook" }, "WEBHOOK_PATH"},
		{"plain http webhook", func(c *Config) { c.WebhookURL = "http://x" }, "WEBHOOK_URL"},
		{"password without secret", func(c *Config) { c.AdminPassword = "pw" }, "JWT_SECRET"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
