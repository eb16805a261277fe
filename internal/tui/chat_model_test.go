package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/i18n"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type chatFixture struct {
	model   ChatModel
	session *chat.Session
	sender  *fakeSender
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	sink := NewChannelSink(0)
	t.Cleanup(sink.Close)

	session := chat.NewSession(sink, chat.Options{
		Clock:    clock.NewMock(),
		Lang:     i18n.New("en"),
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(session.Close)

	sender := &fakeSender{}
	session.Attach(sender)

	model := NewChatModel(ChatOptions{Session: session, Sink: sink, Room: "room-1", Logger: zerolog.Nop()})
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	return &chatFixture{model: updated.(ChatModel), session: session, sender: sender}
}

// drain applies every queued sink event to the model.
func (f *chatFixture) drain(t *testing.T) {
	t.Helper()
	msg := f.model.sink.Listen()()
	require.IsType(t, sinkEventsMsg{}, msg)
	updated, cmd := f.model.Update(msg)
	require.NotNil(t, cmd, "model keeps listening")
	f.model = updated.(ChatModel)
}

func (f *chatFixture) update(msg tea.Msg) tea.Cmd {
	updated, cmd := f.model.Update(msg)
	f.model = updated.(ChatModel)
	return cmd
}

func message(sender, text string) chat.Message {
	return chat.Message{
		Sender:    sender,
		Text:      text,
		CreatedAt: chat.NewTimestamp(time.Date(2024, 5, 1, 14, 5, 0, 0, time.UTC)),
	}
}

func TestChatModel_RendersOwnAndTheirMessages(t *testing.T) {
	f := newChatFixture(t)

	f.session.Connected()
	f.session.UserInfo(chat.UserInfo{Username: "alice"})
	f.session.NewMessage(message("alice", "hi"))
	f.session.NewMessage(message("bob", "hello alice"))
	f.drain(t)

	view := f.model.View()
	assert.Contains(t, view, "You • 02:05 PM")
	assert.Contains(t, view, "bob • 02:05 PM")
	assert.Contains(t, view, "hello alice")
	assert.Contains(t, view, "room-1")
}

func TestChatModel_BufferedMessagesAppearAfterResolution(t *testing.T) {
	f := newChatFixture(t)

	f.session.NewMessage(message("bob", "early"))
	f.session.UserInfo(chat.UserInfo{Username: "alice"})
	f.drain(t)

	assert.Contains(t, f.model.View(), "early")
}

func TestChatModel_LockDisablesComposer(t *testing.T) {
	f := newChatFixture(t)

	f.session.Connected()
	f.session.SessionEnded()
	f.drain(t)

	require.True(t, f.model.Locked())
	assert.Equal(t, 1, strings.Count(f.model.View(), i18n.SessionLocked))

	f.model.input.SetValue("too late")
	cmd := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, f.sender.Sent())
}

func TestChatModel_Send(t *testing.T) {
	f := newChatFixture(t)

	f.model.input.SetValue("  hello  ")
	cmd := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, f.model.input.Value(), "composer clears on send")

	msg := cmd()
	assert.Equal(t, messageSentMsg{}, msg)
	assert.Equal(t, []string{"hello"}, f.sender.Sent())
}

func TestChatModel_BlankInputIsNotSent(t *testing.T) {
	f := newChatFixture(t)

	f.model.input.SetValue("   ")
	assert.Nil(t, f.update(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestChatModel_SendErrorShowsToast(t *testing.T) {
	f := newChatFixture(t)
	f.sender.err = errors.New("write: broken pipe")

	f.model.input.SetValue("hello")
	cmd := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	f.update(cmd())
	assert.Contains(t, f.model.toast.Text(), "broken pipe")
}

func TestChatModel_ConnectionClosed(t *testing.T) {
	f := newChatFixture(t)

	cmd := f.update(connectionClosedMsg{err: errors.New("unexpected EOF")})
	require.NotNil(t, cmd)
	assert.Contains(t, f.model.toast.Text(), "disconnected")

	f.model.input.SetValue("hello")
	assert.Nil(t, f.update(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestWaitForClose(t *testing.T) {
	assert.Nil(t, waitForClose(nil))

	done := make(chan error, 1)
	done <- context.Canceled
	assert.Equal(t, connectionClosedMsg{}, waitForClose(done)())
}

func TestRunChat_ClosesSinkWhenContextEnds(t *testing.T) {
	sink := NewChannelSink(0)
	session := chat.NewSession(sink, chat.Options{
		Clock:    clock.NewMock(),
		Lang:     i18n.New("en"),
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(session.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runChat(ctx, ChatOptions{Session: session, Sink: sink, Logger: zerolog.Nop()},
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		sink.Append(chat.Bubble{Text: "late"}) // nobody listens any more
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sink still blocks senders after the view exited")
	}
}
