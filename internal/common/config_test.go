package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Fetcher.MaxSources)
	assert.True(t, cfg.Storage.Badger.InMemory)
	assert.False(t, cfg.Refresh.Enabled)
	assert.Equal(t, 10, cfg.Map.DefaultZoom)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoscope.toml")

	content := `
environment = "production"

[server]
port = 9090
host = "0.0.0.0"

[fetcher]
max_sources = 3

[map]
default_zoom = 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3, cfg.Fetcher.MaxSources)
	assert.Equal(t, 6, cfg.Map.DefaultZoom)
	assert.True(t, cfg.IsProduction())

	// Unset fields keep defaults
	assert.True(t, cfg.Storage.Badger.InMemory)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/geoscope.toml")
	assert.Error(t, err)
}

func TestLoadFromFile_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEOSCOPE_SERVER_PORT", "7070")
	t.Setenv("GEOSCOPE_LOG_LEVEL", "debug")
	t.Setenv("GEOSCOPE_FETCHER_MAX_SOURCES", "2")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Fetcher.MaxSources)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 6060, "127.0.0.1")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRefreshSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"Every Ten Minutes", "*/10 * * * *", false},
		{"Hourly", "0 * * * *", false},
		{"Every Minute Rejected", "* * * * *", true},
		{"Below Minimum Interval", "*/2 * * * *", true},
		{"Garbage", "often", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefreshSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_RefreshScheduleCheckedWhenEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Refresh.Enabled = true
	cfg.Refresh.Schedule = "* * * * *"
	assert.Error(t, cfg.Validate())

	cfg.Refresh.Schedule = "*/15 * * * *"
	assert.NoError(t, cfg.Validate())
}
