package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirm_HandleKey(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want ConfirmResult
	}{
		{name: "enter defaults to cancel", keys: []string{"enter"}, want: ConfirmDismissed},
		{name: "toggle then enter", keys: []string{"tab", "enter"}, want: ConfirmAccepted},
		{name: "toggle twice", keys: []string{"l", "h", "enter"}, want: ConfirmDismissed},
		{name: "y accepts", keys: []string{"y"}, want: ConfirmAccepted},
		{name: "n dismisses after toggle", keys: []string{"tab", "n"}, want: ConfirmDismissed},
		{name: "esc", keys: []string{"esc"}, want: ConfirmDismissed},
		{name: "other keys wait", keys: []string{"x"}, want: ConfirmPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfirm("Delete word", "Delete \"cat\"?", "Delete")
			var got ConfirmResult
			for _, k := range tt.keys {
				got = c.HandleKey(keyMsg(k))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == ConfirmPending, c.Open())
		})
	}
}

func TestConfirm_View(t *testing.T) {
	c := NewConfirm("Delete word", "Delete \"cat\"?", "Delete")
	view := c.View(60, 20)
	assert.Contains(t, view, "Delete word")
	assert.Contains(t, view, "Cancel")

	assert.Empty(t, Confirm{}.View(60, 20))
}
