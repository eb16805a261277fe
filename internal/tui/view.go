package tui

// ViewType represents which dictionary view is active.
type ViewType int

const (
	ViewWords ViewType = iota
	ViewStats
)
