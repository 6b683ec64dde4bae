package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIsolated(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("ROLLCALL_NOTIFY_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_PATH", filepath.Join(dir, "missing.toml"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	loadIsolated(t)
	Load()

	assert.Equal(t, "http://localhost:8787", Get("server_url", ""))
	assert.Equal(t, "ws://localhost:8787/ws", Get("ws_url", ""))
	assert.Equal(t, 15, GetInt("per_page", 0))
	assert.True(t, GetBool("sound_enabled", false))
	assert.False(t, GetBool("logging_enabled", true))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := loadIsolated(t)
	configPath := filepath.Join(dir, "config.toml")
	content := "server_url = \"https://feed.example.com\"\nper_page = 25\nsound_enabled = false\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_PATH", configPath)
	Load()

	assert.Equal(t, "https://feed.example.com", Get("server_url", ""))
	assert.Equal(t, 25, GetInt("per_page", 0))
	assert.False(t, GetBool("sound_enabled", true))
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := loadIsolated(t)
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("server_url = \"https://file.example.com\"\n"), 0644))
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_PATH", configPath)
	t.Setenv("ROLLCALL_NOTIFY_SERVER_URL", "https://env.example.com")
	Load()

	assert.Equal(t, "https://env.example.com", Get("server_url", ""))
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	loadIsolated(t)
	t.Setenv("ROLLCALL_NOTIFY_PER_PAGE", "-3")
	t.Setenv("ROLLCALL_NOTIFY_LOGGING_LEVEL", "verbose")
	t.Setenv("ROLLCALL_NOTIFY_SOUND_ENABLED", "maybe")
	Load()

	assert.Equal(t, 15, GetInt("per_page", 0))
	assert.Equal(t, "info", Get("logging_level", ""))
	assert.True(t, GetBool("sound_enabled", false))
}

func TestLoad_BoolNormalization(t *testing.T) {
	loadIsolated(t)
	t.Setenv("ROLLCALL_NOTIFY_SOUND_ENABLED", "off")
	Load()

	assert.Equal(t, "false", Get("sound_enabled", ""))
}

func TestLoad_CreatesSampleConfig(t *testing.T) {
	dir := loadIsolated(t)
	Load()

	_, err := os.Stat(filepath.Join(dir, "config", "config.toml"))
	assert.NoError(t, err)
}

func TestGetters_MissingKeyReturnsDefault(t *testing.T) {
	loadIsolated(t)
	Load()

	assert.Equal(t, "fallback", Get("nope", "fallback"))
	assert.Equal(t, 42, GetInt("nope", 42))
	assert.True(t, GetBool("nope", true))
}
