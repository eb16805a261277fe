package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToast(t *testing.T) {
	t.Run("defaults duration", func(t *testing.T) {
		assert.Equal(t, DefaultToastDuration, NewToast(0).duration)
	})

	t.Run("expires after its own timer", func(t *testing.T) {
		toast := NewToast(time.Millisecond)
		cmd := toast.Show(ToastSuccess, "saved")
		require.NotNil(t, cmd)
		assert.Equal(t, "saved", toast.Text())

		assert.True(t, toast.Update(cmd()))
		assert.Empty(t, toast.Text())
		assert.Empty(t, toast.View())
	})

	t.Run("stale timer keeps newer toast", func(t *testing.T) {
		toast := NewToast(time.Millisecond)
		first := toast.Show(ToastInfo, "first")
		toast.Error(errors.New("second"))

		assert.True(t, toast.Update(first()))
		assert.Equal(t, "second", toast.Text())
	})

	t.Run("ignores other messages", func(t *testing.T) {
		toast := NewToast(time.Millisecond)
		toast.Show(ToastInfo, "hello")
		assert.False(t, toast.Update("unrelated"))
		assert.Equal(t, "hello", toast.Text())
	})
}
