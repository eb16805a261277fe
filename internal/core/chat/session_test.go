package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/i18n"
)

type recordingSink struct {
	mu      sync.Mutex
	events  []string
	bubbles []Bubble
	notices []string
}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "clear")
	s.bubbles = nil
}

func (s *recordingSink) Append(b Bubble) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "append "+b.Label+": "+b.Text)
	s.bubbles = append(s.bubbles, b)
}

func (s *recordingSink) Lock(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "lock")
	s.notices = append(s.notices, notice)
}

func (s *recordingSink) Bubbles() []Bubble {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bubble(nil), s.bubbles...)
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *recordingSink) Locks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notices)
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestSession(t *testing.T) (*Session, *recordingSink, *clock.Mock) {
	t.Helper()
	sink := &recordingSink{}
	mock := clock.NewMock()
	s := NewSession(sink, Options{
		Clock:    mock,
		Lang:     i18n.New("en"),
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(s.Close)
	return s, sink, mock
}

func msg(sender, text string) Message {
	return Message{Sender: sender, Text: text, CreatedAt: RawTimestamp("2024-05-01T10:15:00Z")}
}

func TestSession_OwnMessageRendersAsYou(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.Connected()
	s.UserInfo(UserInfo{Username: "alice"})
	s.NewMessage(msg("alice", "hi"))

	bubbles := sink.Bubbles()
	require.Len(t, bubbles, 1)
	assert.Equal(t, "You", bubbles[0].Label)
	assert.Equal(t, "hi", bubbles[0].Text)
	assert.True(t, bubbles[0].Mine)
	assert.Equal(t, "10:15 AM", bubbles[0].Time)
}

func TestSession_MessagesBeforeIdentityAreBuffered(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.Connected()
	s.NewMessage(msg("bob", "first"))
	s.NewMessage(msg("alice", "second"))
	assert.Empty(t, sink.Bubbles(), "nothing renders before identity resolves")

	s.UserInfo(UserInfo{Username: "alice"})

	assert.Equal(t, []string{
		"clear",
		"append bob: first",
		"append You: second",
	}, sink.Events())

	bubbles := sink.Bubbles()
	assert.False(t, bubbles[0].Mine)
	assert.True(t, bubbles[1].Mine)
}

func TestSession_ResolutionWithEmptyBufferDoesNotClear(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.UserInfo(UserInfo{Username: "alice"})
	assert.Empty(t, sink.Events())
}

func TestSession_SecondUserInfoIgnored(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.UserInfo(UserInfo{Username: "alice"})
	s.UserInfo(UserInfo{Username: "mallory"})
	s.NewMessage(msg("alice", "still me"))

	id, ok := s.Identity()
	assert.True(t, ok)
	assert.Equal(t, "alice", id)
	assert.Equal(t, "You", sink.Bubbles()[0].Label)
}

func TestSession_HistoryWhileUnresolvedReplacesBuffer(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.NewMessage(msg("bob", "dropped by snapshot"))
	s.MessageHistory([]Message{msg("alice", "old"), msg("bob", "older")})
	assert.Equal(t, []string{"clear"}, sink.Events())

	s.UserInfo(UserInfo{Username: "alice"})

	assert.Equal(t, []string{
		"clear",
		"clear",
		"append You: old",
		"append bob: older",
	}, sink.Events())
}

func TestSession_HistoryWhileResolvedRendersImmediately(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.UserInfo(UserInfo{Username: "alice"})
	s.NewMessage(msg("bob", "live"))
	s.MessageHistory([]Message{msg("bob", "a"), msg("alice", "b")})

	assert.Equal(t, []string{
		"append bob: live",
		"clear",
		"append bob: a",
		"append You: b",
	}, sink.Events())
}

func TestSession_LocalTimeoutLocksOnce(t *testing.T) {
	s, sink, mock := newTestSession(t)
	sender := &fakeSender{}
	s.Attach(sender)

	s.Connected()

	mock.Add(899 * time.Second)
	locked, _ := s.Locked()
	assert.False(t, locked)

	mock.Add(time.Second)
	assert.Eventually(t, func() bool {
		locked, _ := s.Locked()
		return locked
	}, time.Second, time.Millisecond)

	_, reason := s.Locked()
	assert.Equal(t, LockTimeout, reason)

	s.SessionEnded()
	mock.Add(time.Hour)

	assert.Equal(t, 1, sink.Locks())
	assert.Equal(t, []string{"Session ended. Chat is locked."}, sink.notices)

	err := s.Send(context.Background(), "too late")
	assert.ErrorIs(t, err, ErrSessionLocked)
	assert.Empty(t, sender.sent)
}

func TestSession_RemoteEndWinsOverTimer(t *testing.T) {
	s, sink, mock := newTestSession(t)
	s.Attach(&fakeSender{})

	s.Connected()
	mock.Add(30 * time.Second)

	s.SessionEnded()

	locked, reason := s.Locked()
	assert.True(t, locked)
	assert.Equal(t, LockRemote, reason)
	assert.Equal(t, 1, sink.Locks())

	mock.Add(900 * time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 1, sink.Locks(), "timer must not lock a second time")
	assert.ErrorIs(t, s.Send(context.Background(), "hello"), ErrSessionLocked)
}

func TestSession_ReconnectDoesNotRearmTimer(t *testing.T) {
	s, sink, mock := newTestSession(t)

	s.Connected()
	mock.Add(600 * time.Second)
	s.Connected()
	mock.Add(300 * time.Second)

	assert.Eventually(t, func() bool { return sink.Locks() == 1 }, time.Second, time.Millisecond)

	mock.Add(900 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, sink.Locks())
}

func TestSession_MessagesStillRenderAfterLock(t *testing.T) {
	s, sink, _ := newTestSession(t)

	s.UserInfo(UserInfo{Username: "alice"})
	s.SessionEnded()
	s.NewMessage(msg("bob", "bye"))

	assert.Equal(t, []string{"lock", "append bob: bye"}, sink.Events())
}

func TestSession_Send(t *testing.T) {
	tests := []struct {
		name     string
		attach   bool
		sendErr  error
		text     string
		wantErr  error
		wantSent []string
	}{
		{name: "trims and sends", attach: true, text: "  hello \n", wantSent: []string{"hello"}},
		{name: "empty", attach: true, text: "   ", wantErr: ErrEmptyMessage},
		{name: "no transport", attach: false, text: "hi", wantErr: ErrNotConnected},
		{name: "transport failure", attach: true, sendErr: errors.New("broken pipe"), text: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(t)
			sender := &fakeSender{err: tt.sendErr}
			if tt.attach {
				s.Attach(sender)
			}

			err := s.Send(context.Background(), tt.text)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.sendErr != nil:
				assert.ErrorIs(t, err, tt.sendErr)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantSent, sender.sent)
		})
	}
}

func TestSession_NilSink(t *testing.T) {
	s := NewSession(nil, Options{Clock: clock.NewMock(), Logger: zerolog.Nop()})

	assert.NotPanics(t, func() {
		s.MessageHistory([]Message{msg("bob", "x")})
		s.UserInfo(UserInfo{Username: "alice"})
		s.NewMessage(msg("alice", "y"))
		s.SessionEnded()
	})
}
