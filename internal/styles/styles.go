// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorRed    = lipgloss.Color("#d75f6b")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorPurple = lipgloss.Color("#bb9af7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
	ColorPanel  = lipgloss.Color("#24283b")
)

// Banner ASCII art for the header.
const Banner = `
 ╔═╗╔═╗╦═╗╦  ╔═╗╦ ╦
 ╠═╝╠═╣╠╦╝║  ║╣ ╚╦╝
 ╩  ╩ ╩╩╚═╩═╝╚═╝ ╩ `

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			PaddingLeft(1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			PaddingLeft(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			PaddingLeft(1)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// Chat bubbles. Mine sit on the right in blue, theirs on the left.
var (
	BubbleMineStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(lipgloss.Color("#2f3b63")).
			Padding(0, 1)

	BubbleTheirsStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Background(ColorPanel).
				Padding(0, 1)

	BubbleMetaStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true).
			Align(lipgloss.Center)
)

// Toasts shown in the status line.
var (
	ToastSuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	ToastErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	ToastInfoStyle    = lipgloss.NewStyle().Foreground(ColorGray)
)

// Stats and cards.
var (
	StatValueStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)

	KnownStyle = lipgloss.NewStyle().Foreground(ColorGreen)
)

// FormTheme returns the huh theme used by every form and confirm prompt.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorBlue)
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(ColorWhite).Background(ColorBlue)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorGray).Background(ColorPanel)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorBlue)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorBlue)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray).Bold(false)

	return t
}
