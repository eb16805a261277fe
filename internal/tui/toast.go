package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/parley/internal/styles"
)

// DefaultToastDuration is how long a toast stays in the status line.
const DefaultToastDuration = 3500 * time.Millisecond

// ToastKind selects the toast color.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// toastExpiredMsg hides the toast with the matching sequence number. Older
// timers do not hide a newer toast.
type toastExpiredMsg struct {
	seq int
}

// Toast is a transient status line message.
type Toast struct {
	text     string
	kind     ToastKind
	seq      int
	duration time.Duration
}

func NewToast(d time.Duration) Toast {
	if d <= 0 {
		d = DefaultToastDuration
	}
	return Toast{duration: d}
}

// Show replaces the current toast and returns the command that hides it.
func (t *Toast) Show(kind ToastKind, text string) tea.Cmd {
	t.seq++
	t.text = text
	t.kind = kind

	seq := t.seq
	return tea.Tick(t.duration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Error shows err as an error toast.
func (t *Toast) Error(err error) tea.Cmd {
	return t.Show(ToastError, err.Error())
}

// Update hides the toast when its timer fires and reports whether msg was
// a toast message.
func (t *Toast) Update(msg tea.Msg) bool {
	expired, ok := msg.(toastExpiredMsg)
	if !ok {
		return false
	}
	if expired.seq == t.seq {
		t.text = ""
	}
	return true
}

// Text returns the visible toast text, empty when hidden.
func (t Toast) Text() string {
	return t.text
}

func (t Toast) View() string {
	if t.text == "" {
		return ""
	}
	switch t.kind {
	case ToastSuccess:
		return styles.ToastSuccessStyle.Render(t.text)
	case ToastError:
		return styles.ToastErrorStyle.Render(t.text)
	default:
		return styles.ToastInfoStyle.Render(t.text)
	}
}
