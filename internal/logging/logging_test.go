package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcallhq/rollcall-notify/internal/config"
)

func withStateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ROLLCALL_NOTIFY_STATE_DIR", dir)
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("ROLLCALL_NOTIFY_CONFIG_PATH", filepath.Join(dir, "missing.toml"))
	config.Load()
	return dir
}

func TestInit_DisabledReturnsNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	logger, err := Init(cfg)
	require.NoError(t, err)
	_, isNoop := logger.(noopLogger)
	assert.True(t, isNoop)
}

func TestInit_WritesJSONEntries(t *testing.T) {
	stateDir := withStateDir(t)
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Command = "test"

	logger, err := Init(cfg)
	require.NoError(t, err)
	logger.Info("hello", "user", "7")
	require.NoError(t, logger.Shutdown())

	entries, err := os.ReadDir(filepath.Join(stateDir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(stateDir, "logs", entries[0].Name()))
	require.NoError(t, err)
	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "7", entry["user"])
}

func TestInit_RedactsSensitiveFields(t *testing.T) {
	stateDir := withStateDir(t)
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Command = "test"

	logger, err := Init(cfg)
	require.NoError(t, err)
	logger.Info("auth", "api_token", "super-secret-value")
	require.NoError(t, logger.Shutdown())

	entries, err := os.ReadDir(filepath.Join(stateDir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(stateDir, "logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[REDACTED]")
	assert.NotContains(t, string(data), "super-secret-value")
}

func TestWith_MergesFields(t *testing.T) {
	stateDir := withStateDir(t)
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Command = "test"

	logger, err := Init(cfg)
	require.NoError(t, err)
	child := logger.With("component", "tray")
	child.Info("armed")
	require.NoError(t, logger.Shutdown())

	entries, err := os.ReadDir(filepath.Join(stateDir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(stateDir, "logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"tray"`)
}

func TestRotate_RemovesOldestFiles(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"rollcall-notify_20260101_000000_PID1_a.log",
		"rollcall-notify_20260102_000000_PID1_b.log",
		"rollcall-notify_20260103_000000_PID1_c.log",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	require.NoError(t, rotate(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRedactor(t *testing.T) {
	r := newRedactor()
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"plain key", "user_id", false},
		{"token key", "api_token", true},
		{"password key", "db_password", true},
		{"substring not a segment", "stoken", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.isSensitive(tt.key))
		})
	}
}
