// Package icon provides a multi-variant rendering engine for CLI status symbols.
//
// Icons can be displayed as emoji, plain ASCII or Unicode squares depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/streamcap/streamcap/key"
)

const (
	emoji   = "emoji"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, plain, squares}
}

// Icon identifies a status symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Progress
	Browser
	Playlist
	Retry
	Guess
)

type iconDef struct {
	emoji   string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", plain: "+", squares: "🟩"},
	Fail:     {emoji: "❌", plain: "x", squares: "🟥"},
	Warn:     {emoji: "⚠️", plain: "!", squares: "🟨"},
	Progress: {emoji: "⏳", plain: "~", squares: "🟦"},
	Browser:  {emoji: "🌐", plain: "@", squares: "🟪"},
	Playlist: {emoji: "📝", plain: "#", squares: "⬜"},
	Retry:    {emoji: "🔁", plain: "*", squares: "🟧"},
	Guess:    {emoji: "🧩", plain: "?", squares: "🟫"},
}

// Get retrieves the visual representation based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	if d, ok := icons[i]; ok {
		return d.Get()
	}
	return ""
}
