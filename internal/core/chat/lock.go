package chat

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// LockToken guards the session's single terminal lock. The local timer and the
// remote end signal race for it; whichever consumes it first wins and the
// other becomes a no-op.
type LockToken struct {
	mu       sync.Mutex
	timer    *clock.Timer
	armed    bool
	consumed bool
}

// Arm starts the countdown. fn runs on the clock's goroutine when the timer
// fires and the token has not been consumed by then. Arm only takes effect
// once per token; it returns false for every later call.
func (t *LockToken) Arm(c clock.Clock, d time.Duration, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed || t.consumed {
		return false
	}

	t.armed = true
	t.timer = c.AfterFunc(d, fn)
	return true
}

// Consume takes the token and stops the timer if it is still pending. It
// returns true only for the first caller.
func (t *LockToken) Consume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.consumed {
		return false
	}

	t.consumed = true
	t.stop()
	return true
}

// Stop cancels a pending countdown without consuming the token.
func (t *LockToken) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
}

// Consumed reports whether the lock has been taken.
func (t *LockToken) Consumed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consumed
}

func (t *LockToken) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
