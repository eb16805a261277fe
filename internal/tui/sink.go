package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/parley/internal/core/chat"
)

const defaultSinkBuffer = 64

type sinkEventKind int

const (
	sinkClear sinkEventKind = iota
	sinkAppend
	sinkLock
)

type sinkEvent struct {
	kind   sinkEventKind
	bubble chat.Bubble
	notice string
}

// sinkEventsMsg carries every event that was queued when the UI woke up.
type sinkEventsMsg struct {
	events []sinkEvent
}

// ChannelSink implements chat.Sink for the chat view. Session calls queue
// events on a buffered channel; the UI loop drains them with Listen. Once
// the view is closed, further events are dropped.
type ChannelSink struct {
	events chan sinkEvent
	done   chan struct{}
	once   sync.Once
}

var _ chat.Sink = (*ChannelSink)(nil)

// NewChannelSink creates a sink queueing up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = defaultSinkBuffer
	}
	return &ChannelSink{
		events: make(chan sinkEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSink) Clear() {
	s.push(sinkEvent{kind: sinkClear})
}

func (s *ChannelSink) Append(b chat.Bubble) {
	s.push(sinkEvent{kind: sinkAppend, bubble: b})
}

func (s *ChannelSink) Lock(notice string) {
	s.push(sinkEvent{kind: sinkLock, notice: notice})
}

// Close releases senders blocked on a full queue.
func (s *ChannelSink) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *ChannelSink) push(ev sinkEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Listen returns a command that waits for the next event and takes whatever
// else is already queued along with it.
func (s *ChannelSink) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-s.events:
			batch := []sinkEvent{ev}
			for {
				select {
				case ev := <-s.events:
					batch = append(batch, ev)
				default:
					return sinkEventsMsg{events: batch}
				}
			}
		case <-s.done:
			return nil
		}
	}
}
