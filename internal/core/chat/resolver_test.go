package chat

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_BuffersUntilResolved(t *testing.T) {
	r := NewResolver()

	assert.Nil(t, r.Push(Message{Sender: "bob", Text: "1"}))
	assert.Nil(t, r.Push(Message{Sender: "carol", Text: "2"}))
	assert.Equal(t, 2, r.Pending())
	assert.False(t, r.IsMine(Message{Sender: ""}), "nothing is mine before resolution")

	drained, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, []string{drained[0].Text, drained[1].Text})
	assert.Equal(t, 0, r.Pending())

	got := r.Push(Message{Sender: "alice", Text: "3"})
	require.Len(t, got, 1)
	assert.True(t, r.IsMine(got[0]))
}

func TestResolver_ResolveOnce(t *testing.T) {
	r := NewResolver()

	_, ok := r.Resolve("alice")
	require.True(t, ok)

	drained, ok := r.Resolve("bob")
	assert.False(t, ok)
	assert.Nil(t, drained)

	id, _ := r.Identity()
	assert.Equal(t, "alice", id)
}

func TestResolver_SnapshotReplacesBuffer(t *testing.T) {
	r := NewResolver()
	r.Push(Message{Text: "live"})

	snapshot := []Message{{Text: "a"}, {Text: "b"}}
	assert.Nil(t, r.Snapshot(snapshot))
	assert.Equal(t, 2, r.Pending())

	snapshot[0].Text = "mutated"
	drained, _ := r.Resolve("alice")
	assert.Equal(t, "a", drained[0].Text, "snapshot is copied")

	assert.Len(t, r.Snapshot([]Message{{Text: "c"}}), 1)
}

func TestLockToken_ConsumeOnce(t *testing.T) {
	var token LockToken

	assert.True(t, token.Consume())
	assert.False(t, token.Consume())
	assert.True(t, token.Consumed())
}

func TestLockToken_ArmAfterConsume(t *testing.T) {
	var token LockToken
	token.Consume()

	assert.False(t, token.Arm(clock.NewMock(), time.Second, func() {}))
}

func TestLockToken_ConsumeStopsTimer(t *testing.T) {
	var (
		token LockToken
		mock  = clock.NewMock()
		fired atomic.Int32
	)

	require.True(t, token.Arm(mock, time.Minute, func() { fired.Add(1) }))
	assert.False(t, token.Arm(mock, time.Minute, func() { fired.Add(1) }))

	assert.True(t, token.Consume())
	mock.Add(2 * time.Minute)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
}

func TestLockToken_TimerFires(t *testing.T) {
	var (
		token LockToken
		mock  = clock.NewMock()
		fired atomic.Int32
	)

	token.Arm(mock, time.Minute, func() {
		if token.Consume() {
			fired.Add(1)
		}
	})
	mock.Add(time.Minute)

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, token.Consume())
}
