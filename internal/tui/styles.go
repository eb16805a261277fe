// Package tui implements the Bubble Tea views for parley: the chat room,
// the dictionary and flashcard review.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parley/internal/styles"
)

// Icons and symbols.
const (
	iconDot    = "•"
	iconKnown  = "✔"
	iconLocked = "⏻"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1).
			PaddingBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	searchResultStyle = lipgloss.NewStyle().
				Foreground(styles.ColorWhite).
				PaddingLeft(1)

	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(styles.ColorGray)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// View tabs.
var (
	viewSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.ColorBlue).
				Padding(0, 1)

	viewNormalStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Padding(0, 1)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("#3b4261")).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(lipgloss.Color("#1a1b26")).
					Bold(true)
)

// tableStyles colors the word table header and cursor row.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1a1b26")).
		Background(styles.ColorBlue).
		Bold(false)
	return s
}
