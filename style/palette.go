package style

import "github.com/charmbracelet/lipgloss"

// Palette used by boxed notices.
var (
	Text  = lipgloss.Color("#cdd6f4")
	Mauve = lipgloss.Color("#cba6f7")
	Green = lipgloss.Color("#a6e3a1")
	Red   = lipgloss.Color("#f38ba8")

	AccentColor  = Mauve
	SuccessColor = Green
	ErrorColor   = Red
)
