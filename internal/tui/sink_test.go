package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parley/internal/core/chat"
)

func TestChannelSink_ListenBatchesQueuedEvents(t *testing.T) {
	sink := NewChannelSink(8)
	sink.Clear()
	sink.Append(chat.Bubble{Text: "hi"})
	sink.Lock("locked")

	msg, ok := sink.Listen()().(sinkEventsMsg)
	require.True(t, ok)
	require.Len(t, msg.events, 3)
	assert.Equal(t, sinkClear, msg.events[0].kind)
	assert.Equal(t, "hi", msg.events[1].bubble.Text)
	assert.Equal(t, "locked", msg.events[2].notice)
}

func TestChannelSink_CloseReleasesBlockedSenders(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Append(chat.Bubble{Text: "one"})

	done := make(chan struct{})
	go func() {
		sink.Append(chat.Bubble{Text: "two"}) // blocks on the full queue
		close(done)
	}()

	sink.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("append did not return after close")
	}
	sink.Close() // idempotent
}

func TestChannelSink_ListenAfterClose(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Close()
	assert.Nil(t, sink.Listen()())
}
