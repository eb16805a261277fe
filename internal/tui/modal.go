package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmResult is the outcome of a key press on a Confirm dialog.
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmAccepted
	ConfirmDismissed
)

// Confirm is a two-button dialog drawn over a view. The zero value is closed.
type Confirm struct {
	title   string
	message string
	action  string
	open    bool
	accept  bool // focus is on the action button
}

// NewConfirm opens a dialog whose action button reads action. Focus starts
// on Cancel so a stray enter never runs the action.
func NewConfirm(title, message, action string) Confirm {
	return Confirm{title: title, message: message, action: action, open: true}
}

func (c Confirm) Open() bool { return c.open }

// HandleKey moves focus or resolves the dialog. y and n answer directly.
func (c *Confirm) HandleKey(msg tea.KeyMsg) ConfirmResult {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		c.accept = !c.accept
		return ConfirmPending
	case "y":
		c.accept = true
	case "enter":
	case "esc", "n":
		c.accept = false
	default:
		return ConfirmPending
	}

	c.open = false
	if c.accept {
		return ConfirmAccepted
	}
	return ConfirmDismissed
}

// View renders the dialog centered in a width by height area.
func (c Confirm) View(width, height int) string {
	if !c.open {
		return ""
	}

	action, cancel := modalButtonStyle, modalButtonSelectedStyle
	if c.accept {
		action, cancel = cancel, action
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		action.Render(c.action), "  ", cancel.Render("Cancel"))

	box := modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		modalTitleStyle.Render(c.title),
		"",
		c.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		modalHelpStyle.Render("←/→ select  enter confirm  y/n answer  esc cancel"),
	))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
