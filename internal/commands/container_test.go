package commands

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/integration/voice"
	"github.com/hay-kot/parley/internal/store/transcript"
)

func testFlags(t *testing.T, userID string) *Flags {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	f := &Flags{Config: &cfg, UserID: userID}
	require.NoError(t, f.Setup())
	t.Cleanup(func() { _ = f.Shutdown() })
	return f
}

func TestFlags_Setup(t *testing.T) {
	f := testFlags(t, " 42 ")

	id := do.MustInvoke[Identity](f.Injector)
	assert.Equal(t, "42", id.UserID)
	assert.Equal(t, "flag", string(id.Source))
	assert.Equal(t, "ru", f.Lang.Tag().String())

	svc, err := do.Invoke[*words.Service](f.Injector)
	require.NoError(t, err)
	assert.Equal(t, "42", svc.UserID())

	rec, err := do.Invoke[*voice.Recognizer](f.Injector)
	require.NoError(t, err)
	assert.False(t, rec.Available(), "no voice command configured")
}

func TestFlags_SetupLaunchURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	f := &Flags{Config: &cfg, LaunchURL: "https://app.example.com/?user_id=77"}
	require.NoError(t, f.Setup())
	t.Cleanup(func() { _ = f.Shutdown() })

	id := do.MustInvoke[Identity](f.Injector)
	assert.Equal(t, "77", id.UserID)
}

func TestFlags_SetupWithoutConfig(t *testing.T) {
	assert.Error(t, (&Flags{}).Setup())
	assert.NoError(t, (&Flags{}).Shutdown())
}

func TestInjector_TranscriptShutdown(t *testing.T) {
	f := testFlags(t, "42")

	store, err := do.Invoke[*transcript.Store](f.Injector)
	require.NoError(t, err)
	require.NoError(t, store.Append("abc", chat.Entry{Kind: chat.EntryNotice, Text: "hi"}))

	require.NoError(t, f.Shutdown())

	reopened, err := transcript.Open(f.Config.TranscriptDir(), zerolog.Nop())
	require.NoError(t, err, "shutdown releases the pebble lock")
	defer reopened.Close() //nolint:errcheck

	entries, err := reopened.Recent("abc", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hi", entries[0].Text)
}

func TestInjector_ProgressStore(t *testing.T) {
	f := testFlags(t, "42")

	progress, err := do.Invoke[words.ProgressStore](f.Injector)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, progress.SetKnown(ctx, "42", "1", true))
	known, err := progress.Known(ctx, "42")
	require.NoError(t, err)
	assert.True(t, known["1"])
}
