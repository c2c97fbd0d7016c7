package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbeam/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, loaded, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.False(t, loaded)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "openai", cfg.PrimaryProvider)
	assert.Equal(t, "gemini", cfg.FallbackProvider)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "0 * * * *", cfg.NewsRefreshSpec)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PRIMARY_PROVIDER", "anthropic")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("ALLOWED_USERS", "1,2,3")
	t.Setenv("NEWS_FEEDS", "technology=https://example.com/rss,world=https://example.org/feed")

	cfg, _, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.PrimaryProvider)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AllowedUsers)
	assert.Equal(t, []string{
		"technology=https://example.com/rss",
		"world=https://example.org/feed",
	}, cfg.NewsFeeds)
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEWSBEAM_TEST_MODEL_OVERRIDE=1\nGEMINI_MODEL=gemini-test\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("GEMINI_MODEL")
		_ = os.Unsetenv("NEWSBEAM_TEST_MODEL_OVERRIDE")
	})

	cfg, loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, loaded)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ALLOWED_USERS", "1,abc")

	_, _, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
