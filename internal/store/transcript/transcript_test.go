package transcript

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
)

func openTest(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func texts(entries []chat.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := openTest(t, t.TempDir())
	t.Cleanup(func() { _ = s.Close() })

	for i := range 5 {
		require.NoError(t, s.Append("room-a", chat.Entry{Kind: chat.EntryMessage, Text: fmt.Sprintf("a%d", i)}))
		require.NoError(t, s.Append("room-b", chat.Entry{Kind: chat.EntryMessage, Text: fmt.Sprintf("b%d", i)}))
	}

	all, err := s.Recent("room-a", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "a1", "a2", "a3", "a4"}, texts(all))

	last, err := s.Recent("room-b", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b3", "b4"}, texts(last))

	none, err := s.Recent("room-c", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_PrefixRoomsDoNotOverlap(t *testing.T) {
	s := openTest(t, t.TempDir())
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Append("room", chat.Entry{Text: "short"}))
	require.NoError(t, s.Append("room-long", chat.Entry{Text: "long"}))

	got, err := s.Recent("room", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, texts(got))

	rooms, err := s.Rooms()
	require.NoError(t, err)
	assert.Equal(t, []string{"room", "room-long"}, rooms)
}

func TestStore_SequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s := openTest(t, dir)
	require.NoError(t, s.Append("z", chat.Entry{Text: "z0"}))
	require.NoError(t, s.Append("a", chat.Entry{Text: "a0"}))
	require.NoError(t, s.Append("z", chat.Entry{Text: "z1"}))
	require.NoError(t, s.Close())

	s = openTest(t, dir)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, uint64(3), s.next)

	require.NoError(t, s.Append("a", chat.Entry{Text: "a1"}))
	got, err := s.Recent("a", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "a1"}, texts(got))
}

func TestSplitKey(t *testing.T) {
	room, seq, ok := splitKey(makeKey("abc", 42))
	assert.True(t, ok)
	assert.Equal(t, "abc", room)
	assert.Equal(t, uint64(42), seq)

	_, _, ok = splitKey([]byte("short"))
	assert.False(t, ok)
}
