package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink is the output side of a session. Implementations append to a
// scrolling transcript and keep the latest entry in view.
type Sink interface {
	// Clear empties the transcript.
	Clear()
	// Append adds a message bubble.
	Append(b Bubble)
	// Lock disables the composer and appends the locked notice.
	Lock(notice string)
}

type nopSink struct{}

func (nopSink) Clear()        {}
func (nopSink) Append(Bubble) {}
func (nopSink) Lock(string)   {}

// LineSink prints the transcript as plain lines, for output that is not a
// terminal.
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, strings.Repeat("─", 32))
}

func (s *LineSink) Append(b Bubble) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s\n  %s\n", b.Meta(), b.Text)
}

func (s *LineSink) Lock(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "* %s\n", notice)
}

// EntryKind distinguishes transcript entries.
type EntryKind string

const (
	EntryMessage EntryKind = "message"
	EntryNotice  EntryKind = "notice"
	EntryClear   EntryKind = "clear"
)

// Entry is one recorded transcript line.
type Entry struct {
	Kind       EntryKind `json:"kind"`
	Sender     string    `json:"sender,omitempty"`
	Label      string    `json:"label,omitempty"`
	Text       string    `json:"text,omitempty"`
	Time       string    `json:"time,omitempty"`
	Mine       bool      `json:"mine,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TranscriptLog stores entries per room.
type TranscriptLog interface {
	Append(room string, e Entry) error
}

// Recorder is a Sink decorator that stores every entry in a TranscriptLog
// before forwarding it.
type Recorder struct {
	next   Sink
	log    TranscriptLog
	room   string
	now    func() time.Time
	logger zerolog.Logger
}

// NewRecorder wraps next. A nil next records without forwarding.
func NewRecorder(next Sink, log TranscriptLog, room string, now func() time.Time, logger zerolog.Logger) *Recorder {
	if next == nil {
		next = nopSink{}
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{next: next, log: log, room: room, now: now, logger: logger}
}

func (r *Recorder) Clear() {
	r.record(Entry{Kind: EntryClear})
	r.next.Clear()
}

func (r *Recorder) Append(b Bubble) {
	r.record(Entry{
		Kind:   EntryMessage,
		Sender: b.Sender,
		Label:  b.Label,
		Text:   b.Text,
		Time:   b.Time,
		Mine:   b.Mine,
	})
	r.next.Append(b)
}

func (r *Recorder) Lock(notice string) {
	r.record(Entry{Kind: EntryNotice, Text: notice})
	r.next.Lock(notice)
}

// record never blocks the transcript on storage failures.
func (r *Recorder) record(e Entry) {
	e.RecordedAt = r.now().UTC()
	if err := r.log.Append(r.room, e); err != nil {
		r.logger.Warn().Err(err).Str("room", r.room).Msg("failed to record transcript entry")
	}
}
