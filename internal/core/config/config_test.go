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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, 900*time.Second, cfg.Chat.SessionDuration)
	assert.Equal(t, 3500*time.Millisecond, cfg.TUI.ToastDuration)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "transcripts"), cfg.TranscriptDir())
	assert.Equal(t, filepath.Join(dataDir, "progress.json"), cfg.ProgressFile())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
locale: en
timezone: UTC
chat:
  endpoint: wss://chat.example.com/ws
  session_duration: 10m
  ping_interval: 0s
  record: false
dict:
  base_url: https://api.example.com
  user_id: "42"
voice:
  command: listen --lang {{ .Lang }}
  lang: en-US
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "wss://chat.example.com/ws", cfg.Chat.Endpoint)
	assert.Equal(t, 10*time.Minute, cfg.Chat.SessionDuration)
	assert.Equal(t, time.Duration(0), cfg.Chat.PingInterval)
	assert.False(t, cfg.Chat.Record)
	assert.Equal(t, 10*time.Second, cfg.Chat.HandshakeTimeout, "unset values keep defaults")
	assert.Equal(t, "42", cfg.Dict.UserID)
	assert.Equal(t, "en-US", cfg.Voice.Lang)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "dict:\n  user_id: \"1\"\n")

	t.Setenv("PARLEY_DICT_USER_ID", "77")
	t.Setenv("PARLEY_CHAT_SESSION_DURATION", "30s")
	t.Setenv("PARLEY_LOCALE", "en")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "77", cfg.Dict.UserID)
	assert.Equal(t, 30*time.Second, cfg.Chat.SessionDuration)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "timezone: Nowhere/Land\n"), t.TempDir())
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(writeConfig(t, "chat: [\n"), t.TempDir())
	assert.ErrorContains(t, err, "parse config file")
}

func TestLocation_FallsBackToLocal(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())
}
