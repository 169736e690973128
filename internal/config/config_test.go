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

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.RadiusKm)
	assert.Equal(t, 20, cfg.Search.MaxPages)
	assert.Equal(t, "Sydney NSW", cfg.Search.FallbackAddress)
	assert.Equal(t, "Australia", cfg.Search.Country)
	assert.Equal(t, 5*time.Minute, cfg.Search.AdapterTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Redis.LockTTL)
	assert.Equal(t, "LocatorApp/1.0", cfg.Browser.UserAgent)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.InitialWait)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
search:
  radius_km: 120
  max_pages: 3
adapters:
  jobs: [seek]
store:
  driver: memory
schedules:
  - spec: "@every 1h"
    address: "Newtown NSW"
    category: "aged-care"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("STORE_DRIVER", "postgres")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, MaxRadiusKm, cfg.Search.RadiusKm)
	assert.Equal(t, 3, cfg.Search.MaxPages)
	assert.Equal(t, []string{"seek"}, cfg.Adapters.Jobs)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.True(t, cfg.TelegramEnabled())
	require.Len(t, cfg.Schedules, 1)
	assert.Equal(t, "Newtown NSW", cfg.Schedules[0].Address)
}

func TestLoadFile_InvalidChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_BadYAML(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "search: [unclosed"))
	assert.Error(t, err)
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 5}, {5, 5}, {25, 25}, {50, 50}, {51, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampRadius(tt.in))
	}
}
