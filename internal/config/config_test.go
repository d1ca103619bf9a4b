package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UPGATES_API_URL", " https://shop.admin.upgates.com/api/v2 ")
	t.Setenv("UPGATES_LOGIN", "shop")
	t.Setenv("UPGATES_API_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.admin.upgates.com/api/v2", cfg.UpgatesAPIURL)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.UpgatesTimeout)
	assert.Equal(t, time.Hour, cfg.WatchLookback)
	assert.Equal(t, 20, cfg.WatchMaxPages)
	assert.Equal(t, "bbolt", cfg.StorageType)
	assert.Equal(t, 30*24*time.Hour, cfg.StorageTTL)
	assert.Equal(t, 12*time.Hour, cfg.StorageCleanupInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("WATCH_STATUS_ID", "4")
	t.Setenv("STORAGE_TYPE", "NONE")
	t.Setenv("UPGATES_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, "4", cfg.WatchStatusID)
	assert.Equal(t, "none", cfg.StorageType)
	assert.True(t, cfg.UpgatesDebug)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing credentials", env: map[string]string{"UPGATES_API_KEY": ""}, want: "UPGATES_API_KEY"},
		{name: "poll interval", env: map[string]string{"POLL_INTERVAL": "0"}, want: "poll_interval"},
		{name: "lookback", env: map[string]string{"WATCH_LOOKBACK_SECONDS": "-5"}, want: "watch_lookback_seconds"},
		{name: "max pages", env: map[string]string{"WATCH_MAX_PAGES": "0"}, want: "watch_max_pages"},
		{name: "storage type", env: map[string]string{"STORAGE_TYPE": "redis"}, want: "storage_type"},
		{name: "ttl", env: map[string]string{"STORAGE_TTL_SECONDS": "0"}, want: "storage_ttl_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRedactedHidesAPIKey(t *testing.T) {
	cfg := Config{UpgatesAPIKey: "secret", UpgatesLogin: "shop"}
	red := cfg.Redacted()
	assert.Equal(t, "***", red.UpgatesAPIKey)
	assert.Equal(t, "shop", red.UpgatesLogin)
	assert.Equal(t, "secret", cfg.UpgatesAPIKey, "receiver must not change")
}
