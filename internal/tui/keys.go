package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

var (
	keyQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	keyBack = key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("q", "quit"))
)

// chatKeys are active while the composer has focus.
var chatKeys = struct {
	Send   key.Binding
	Scroll key.Binding
	Quit   key.Binding
}{
	Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown", "up", "down"), key.WithHelp("↑/↓", "scroll")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "leave")),
}

var wordsKeys = struct {
	Add     key.Binding
	Search  key.Binding
	Delete  key.Binding
	Voice   key.Binding
	Refresh key.Binding
	Tab     key.Binding
}{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Voice:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "voice")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "stats")),
}

var reviewKeys = struct {
	Flip    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Shuffle key.Binding
	Known   key.Binding
	Unknown key.Binding
}{
	Flip:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "flip")),
	Next:    key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→", "next")),
	Prev:    key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←", "prev")),
	Shuffle: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
	Known:   key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "known")),
	Unknown: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unknown")),
}

// helpLine renders "key desc • key desc" for the enabled bindings.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " "+iconDot+" ")
}
