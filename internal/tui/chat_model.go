package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/styles"
)

const sendTimeout = 10 * time.Second

// ChatOptions configures the chat view.
type ChatOptions struct {
	Session *chat.Session
	Sink    *ChannelSink
	Room    string
	// Done delivers the transport's exit error when the connection ends.
	Done          <-chan error
	ToastDuration time.Duration
	Logger        zerolog.Logger
}

// connectionClosedMsg is sent when the push channel stops.
type connectionClosedMsg struct {
	err error
}

// messageSentMsg is sent when a send completes.
type messageSentMsg struct {
	err error
}

// chatItem is a transcript row: a bubble or a notice.
type chatItem struct {
	bubble chat.Bubble
	notice string
}

// ChatModel is the Bubble Tea model of a chat room.
type ChatModel struct {
	session *chat.Session
	sink    *ChannelSink
	room    string
	done    <-chan error
	logger  zerolog.Logger

	viewport viewport.Model
	input    textinput.Model
	toast    Toast
	items    []chatItem

	locked bool
	closed bool
	width  int
	height int
}

func NewChatModel(opts ChatOptions) ChatModel {
	input := textinput.New()
	input.Placeholder = "Message"
	input.Prompt = "› "
	input.PromptStyle = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	input.Focus()

	return ChatModel{
		session:  opts.Session,
		sink:     opts.Sink,
		room:     opts.Room,
		done:     opts.Done,
		logger:   opts.Logger,
		viewport: viewport.New(80, 20),
		input:    input,
		toast:    NewToast(opts.ToastDuration),
		width:    80,
		height:   24,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(m.sink.Listen(), waitForClose(m.done), textinput.Blink)
}

// Locked reports whether the composer is disabled.
func (m ChatModel) Locked() bool {
	return m.locked
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.toast.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case sinkEventsMsg:
		m.apply(msg.events)
		return m, m.sink.Listen()

	case connectionClosedMsg:
		m.closed = true
		m.input.Blur()
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("push channel closed")
			cmd := m.toast.Show(ToastError, "disconnected: "+msg.err.Error())
			return m, cmd
		}
		cmd := m.toast.Show(ToastInfo, "disconnected")
		return m, cmd

	case messageSentMsg:
		if msg.err != nil {
			cmd := m.toast.Error(msg.err)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, chatKeys.Quit):
		m.sink.Close()
		return m, tea.Quit

	case key.Matches(msg, chatKeys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, chatKeys.Send):
		if m.locked || m.closed {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		cmd := m.send(text)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) send(text string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return messageSentMsg{err: session.Send(ctx, text)}
	}
}

func (m *ChatModel) apply(events []sinkEvent) {
	for _, ev := range events {
		switch ev.kind {
		case sinkClear:
			m.items = nil
		case sinkAppend:
			m.items = append(m.items, chatItem{bubble: ev.bubble})
		case sinkLock:
			m.locked = true
			m.input.Blur()
			m.items = append(m.items, chatItem{notice: ev.notice})
		}
	}
	m.refresh()
}

func (m *ChatModel) layout() {
	// header (2) + composer (2) + status (1)
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-5, 1)
	m.input.Width = max(m.width-4, 10)
	m.refresh()
}

// refresh re-renders the transcript and keeps the latest entry in view.
func (m *ChatModel) refresh() {
	rows := make([]string, 0, len(m.items))
	for _, it := range m.items {
		rows = append(rows, renderChatItem(it, m.viewport.Width))
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))
	m.viewport.GotoBottom()
}

func renderChatItem(it chatItem, width int) string {
	if it.notice != "" {
		return styles.NoticeStyle.Width(width).Render(it.notice)
	}

	b := it.bubble
	maxWidth := max(width*3/4, 10)
	textWidth := min(lipgloss.Width(b.Text)+2, maxWidth)

	style, align := styles.BubbleTheirsStyle, lipgloss.Left
	if b.Mine {
		style, align = styles.BubbleMineStyle, lipgloss.Right
	}

	block := lipgloss.JoinVertical(align,
		styles.BubbleMetaStyle.Render(b.Meta()),
		style.Width(textWidth).Render(b.Text),
	)
	return lipgloss.PlaceHorizontal(width, align, block) + "\n"
}

func (m ChatModel) View() string {
	title := styles.TitleStyle.Render("parley " + iconDot + " " + m.room)
	if id, ok := m.session.Identity(); ok {
		title += subtleStyle.Render("  " + id)
	}
	if m.locked {
		title += styles.NoticeStyle.Render("  " + iconLocked)
	}

	status := m.toast.View()
	if status == "" {
		status = styles.HelpStyle.Render(helpLine(chatKeys.Send, chatKeys.Scroll, chatKeys.Quit))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.viewport.View(),
		composerStyle.Width(m.width).Render(m.input.View()),
		status,
	)
}

func waitForClose(done <-chan error) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		err := <-done
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return connectionClosedMsg{err: err}
	}
}

// RunChat runs the chat view until the user leaves or ctx ends. The sink is
// closed on every exit path so a reader blocked on it is released.
func RunChat(ctx context.Context, opts ChatOptions) error {
	return runChat(ctx, opts, tea.WithAltScreen())
}

func runChat(ctx context.Context, opts ChatOptions, progOpts ...tea.ProgramOption) error {
	if opts.Sink != nil {
		defer opts.Sink.Close()
	}

	p := tea.NewProgram(NewChatModel(opts), append(progOpts, tea.WithContext(ctx))...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run chat view: %w", err)
	}
	return nil
}
