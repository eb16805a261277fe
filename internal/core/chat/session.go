package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/i18n"
)

// DefaultSessionDuration is how long a room stays open after connecting.
const DefaultSessionDuration = 900 * time.Second

var (
	ErrSessionLocked = errors.New("session is locked")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNotConnected  = errors.New("not connected")
)

// LockReason records which path locked the session.
type LockReason string

const (
	LockTimeout LockReason = "timeout"
	LockRemote  LockReason = "remote"
)

// Options configures a Session.
type Options struct {
	Duration time.Duration
	Clock    clock.Clock
	Lang     *i18n.Lang
	Location *time.Location
	Logger   zerolog.Logger
}

// Session is the state of one chat room connection. It implements Handler
// and serializes every inbound event, so the transport reader and the timer
// goroutine can both call into it.
type Session struct {
	mu       sync.Mutex
	resolver *Resolver
	token    LockToken
	locked   bool
	reason   LockReason
	sink     Sink
	sender   Sender
	format   Formatter
	clock    clock.Clock
	duration time.Duration
	logger   zerolog.Logger
}

var _ Handler = (*Session)(nil)

// NewSession returns a session rendering to sink. A nil sink discards output.
func NewSession(sink Sink, opts Options) *Session {
	if sink == nil {
		sink = nopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultSessionDuration
	}

	return &Session{
		resolver: NewResolver(),
		sink:     sink,
		format:   NewFormatter(opts.Lang, opts.Location, opts.Logger),
		clock:    opts.Clock,
		duration: opts.Duration,
		logger:   opts.Logger,
	}
}

// Attach sets the transport used by Send.
func (s *Session) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Connected arms the session timer. Reconnects do not re-arm it.
func (s *Session) Connected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.token.Arm(s.clock, s.duration, s.expire) {
		s.logger.Debug().Msg("session timer already armed, ignoring reconnect")
		return
	}
	s.logger.Debug().Dur("duration", s.duration).Msg("session timer armed")
}

func (s *Session) UserInfo(info UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained, ok := s.resolver.Resolve(info.Username)
	if !ok {
		current, _ := s.resolver.Identity()
		s.logger.Warn().
			Str("identity", current).
			Str("username", info.Username).
			Msg("identity already resolved, ignoring user_info")
		return
	}

	s.logger.Debug().Str("identity", info.Username).Int("pending", len(drained)).Msg("identity resolved")

	if len(drained) == 0 {
		return
	}

	s.sink.Clear()
	s.render(drained)
}

func (s *Session) NewMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.render(s.resolver.Push(msg))
}

func (s *Session) MessageHistory(msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sink.Clear()
	s.render(s.resolver.Snapshot(msgs))
}

// SessionEnded locks the session on the server's signal. It is a no-op when
// the local timer already locked it.
func (s *Session) SessionEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.token.Consume() {
		s.logger.Debug().Msg("session already locked, ignoring session_ended")
		return
	}
	s.lock(LockRemote)
}

func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.token.Consume() {
		return
	}
	s.lock(LockTimeout)
}

// Send emits text on the push channel. The text is trimmed; empty text and
// sends after the session locked are rejected without touching the transport.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	locked, sender := s.locked, s.sender
	s.mu.Unlock()

	if locked {
		return ErrSessionLocked
	}
	if sender == nil {
		return ErrNotConnected
	}

	if err := sender.SendMessage(ctx, text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Locked reports whether the session is locked and why.
func (s *Session) Locked() (bool, LockReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked, s.reason
}

// Identity returns the resolved identity.
func (s *Session) Identity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Identity()
}

// Close stops a pending timer without locking the session.
func (s *Session) Close() {
	s.token.Stop()
}

func (s *Session) render(msgs []Message) {
	for _, msg := range msgs {
		s.sink.Append(s.format.Format(msg, s.resolver.IsMine(msg)))
	}
}

func (s *Session) lock(reason LockReason) {
	s.locked = true
	s.reason = reason
	s.logger.Info().Str("reason", string(reason)).Msg("session locked")
	s.sink.Lock(s.format.LockedNotice())
}
