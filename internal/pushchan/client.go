// Package pushchan is the websocket transport for chat rooms. Inbound JSON
// envelopes are decoded and handed to a chat.Handler; outbound messages are
// written as send_message envelopes.
package pushchan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/launch"
)

// ErrClosed is returned by SendMessage once the connection is closed.
var ErrClosed = errors.New("push channel closed")

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

// Envelope is the frame shape on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Options struct {
	// Endpoint is the ws:// or wss:// URL of the push server.
	Endpoint         string
	HandshakeTimeout time.Duration
	// PingInterval enables keepalive pings. The read deadline is twice the
	// interval and is pushed forward by every pong. Zero disables both.
	PingInterval time.Duration
	WriteTimeout time.Duration
	Logger       zerolog.Logger
}

// Client is one open connection to a room.
type Client struct {
	conn   *websocket.Conn
	opts   Options
	logger zerolog.Logger

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

var _ chat.Sender = (*Client)(nil)

// Dial opens the connection for room. There is no retry: a failed handshake
// is returned to the caller.
func Dial(ctx context.Context, opts Options, room launch.Room) (*Client, error) {
	if room.ID == "" {
		return nil, launch.ErrNoRoom
	}

	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	q := u.Query()
	q.Set("token", room.Token)
	q.Set("room_id", room.ID)
	u.RawQuery = q.Encode()

	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	dialer := &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	logger := opts.Logger.With().Str("room", room.ID).Logger()
	logger.Debug().Str("host", u.Host).Msg("push channel connected")

	return &Client{
		conn:   conn,
		opts:   opts,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Run reports the connection to h and then delivers every inbound event until
// the server closes the socket, ctx is cancelled or Close is called. A normal
// close returns nil.
func (c *Client) Run(ctx context.Context, h chat.Handler) error {
	defer c.Close() //nolint:errcheck

	h.Connected()

	if c.opts.PingInterval > 0 {
		wait := 2 * c.opts.PingInterval
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(wait))
		})
		go c.pingLoop(ctx)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Msg("push channel closed by server")
				return nil
			}
			return fmt.Errorf("read push event: %w", err)
		}

		dispatch(h, data, c.logger)
	}
}

// SendMessage emits a send_message event carrying text.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	payload, err := json.Marshal(text)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	deadline := time.Now().Add(c.opts.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(Envelope{Event: chat.EventSendMessage, Data: payload}); err != nil {
		return fmt.Errorf("write %s: %w", chat.EventSendMessage, err)
	}
	return nil
}

// Close sends a close frame and releases the socket. It is safe to call more
// than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// dispatch decodes one frame and calls the matching handler method. Frames
// that cannot be decoded are logged and skipped.
func dispatch(h chat.Handler, data []byte, logger zerolog.Logger) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn().Err(err).Msg("skipping malformed push frame")
		return
	}

	switch env.Event {
	case chat.EventConnect:
		h.Connected()
	case chat.EventUserInfo:
		var info chat.UserInfo
		if !decode(env, &info, logger) {
			return
		}
		h.UserInfo(info)
	case chat.EventNewMessage:
		var msg chat.Message
		if !decode(env, &msg, logger) {
			return
		}
		h.NewMessage(msg)
	case chat.EventMessageHistory:
		var msgs []chat.Message
		if !decode(env, &msgs, logger) {
			return
		}
		h.MessageHistory(msgs)
	case chat.EventSessionEnded:
		h.SessionEnded()
	default:
		logger.Warn().Str("event", env.Event).Msg("unknown push event")
	}
}

func decode(env Envelope, v any, logger zerolog.Logger) bool {
	if len(env.Data) == 0 {
		logger.Warn().Str("event", env.Event).Msg("push event without data")
		return false
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		logger.Warn().Err(err).Str("event", env.Event).Msg("skipping malformed push payload")
		return false
	}
	return true
}
