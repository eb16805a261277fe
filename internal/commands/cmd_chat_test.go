package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/launch"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/printer"
)

func TestResolveRoom(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		room    string
		token   string
		want    launch.Room
		wantErr error
	}{
		{name: "from link", url: "https://chat.example.com/room/abc?token=t1", want: launch.Room{ID: "abc", Token: "t1"}},
		{name: "flags override link", url: "https://chat.example.com/room/abc?token=t1", room: "xyz", token: "t2", want: launch.Room{ID: "xyz", Token: "t2"}},
		{name: "token from link", url: "https://chat.example.com/room/abc?token=t1", room: "xyz", want: launch.Room{ID: "xyz", Token: "t1"}},
		{name: "flags only", room: "abc", token: "t", want: launch.Room{ID: "abc", Token: "t"}},
		{name: "nothing", wantErr: launch.ErrNoRoom},
		{name: "link without room", url: "https://chat.example.com/", wantErr: launch.ErrNoRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRoom(tt.url, tt.room, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeRoom struct {
	mu     sync.Mutex
	sent   []string
	runErr error
}

func (f *fakeRoom) Run(ctx context.Context, h chat.Handler) error {
	h.Connected()
	if f.runErr != nil {
		return f.runErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeRoom) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeRoom) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestSession(t *testing.T, room *fakeRoom) *chat.Session {
	t.Helper()
	s := chat.NewSession(nil, chat.Options{Clock: clock.NewMock(), Logger: zerolog.Nop()})
	s.Attach(room)
	t.Cleanup(s.Close)
	return s
}

func TestRunPlainChat_SendsLines(t *testing.T) {
	room := &fakeRoom{}
	session := newTestSession(t, room)

	err := runPlainChat(context.Background(), strings.NewReader("hello\n   \nbye\n"), room, session, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "bye"}, room.Sent())
}

func TestRunPlainChat_ConnectionEnds(t *testing.T) {
	room := &fakeRoom{runErr: errors.New("read push event: reset")}
	session := newTestSession(t, room)

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	err := runPlainChat(context.Background(), pr, room, session, zerolog.Nop())
	assert.EqualError(t, err, "read push event: reset")
	assert.Empty(t, room.Sent())
}

func TestRunPlainChat_LockedSessionDropsInput(t *testing.T) {
	room := &fakeRoom{}
	session := newTestSession(t, room)
	session.SessionEnded()

	err := runPlainChat(context.Background(), strings.NewReader("too late\n"), room, session, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, room.Sent())
}

func TestReportImport(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewPlain(&buf)

	failed := reportImport(p, []words.ImportResult{
		{Row: words.Row{Source: "a.csv", Line: 2, Word: "cat"}},
		{Row: words.Row{Source: "a.csv", Line: 3, Word: ""}, Err: errors.New("word: is required")},
		{Row: words.Row{Source: "b.csv"}, Err: errors.New("not a text file")},
	})

	assert.Equal(t, 2, failed)
	out := buf.String()
	assert.Contains(t, out, "a.csv:2: cat")
	assert.Contains(t, out, "a.csv:3: word: is required")
	assert.Contains(t, out, "b.csv: not a text file")
	assert.Contains(t, out, "Imported 1, failed 2")
}
