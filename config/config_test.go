package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Domain)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5000, cfg.MaxUploadSizeMB)
	assert.Equal(t, 20*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Minute, cfg.OutputTTL)
	assert.Equal(t, 30*time.Minute, cfg.UploadOutputTTL)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "yt-dlp", cfg.YtdlpPath)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "8080")
	t.Setenv("DOMAIN", "https://press.example.com")
	t.Setenv("DATA_DIR", "/var/lib/reelpress")
	t.Setenv("OUTPUT_TTL_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://press.example.com", cfg.Domain)
	assert.Equal(t, 5*time.Minute, cfg.OutputTTL)
	assert.Equal(t, "/var/lib/reelpress/temp", cfg.TempDir())
	assert.Equal(t, "/var/lib/reelpress/converted", cfg.OutputDir())
}

func TestLoad_RequiresCredential(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("API_KEY_HASH", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_HashAloneSuffices(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("API_KEY_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
	assert.NotEmpty(t, cfg.APIKeyHash)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
