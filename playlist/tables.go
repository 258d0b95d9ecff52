package playlist

import "maps"

// Tables resolve a category to its logo, group title and icon.
// A Tables value is never modified after construction.
type Tables struct {
	logos       map[string]string
	groups      map[string]string
	icons       map[string]string
	defaultLogo string
	defaultIcon string
}

// NewTables copies the given maps.
func NewTables(logos, groups, icons map[string]string, defaultLogo, defaultIcon string) Tables {
	return Tables{
		logos:       maps.Clone(logos),
		groups:      maps.Clone(groups),
		icons:       maps.Clone(icons),
		defaultLogo: defaultLogo,
		defaultIcon: defaultIcon,
	}
}

// Logo returns the category logo or the default one.
func (t Tables) Logo(category string) string {
	if logo, ok := t.logos[category]; ok {
		return logo
	}
	return t.defaultLogo
}

// Group returns the display group of a category, or the category itself.
func (t Tables) Group(category string) string {
	if group, ok := t.groups[category]; ok {
		return group
	}
	return category
}

// Icon returns the category icon or the default one.
func (t Tables) Icon(category string) string {
	if icon, ok := t.icons[category]; ok {
		return icon
	}
	return t.defaultIcon
}

const logoHost = "http://drewlive2423.duckdns.org:9000/Logos/"

// DefaultTables returns the lookup tables for the ppv.to catalog categories.
func DefaultTables() Tables {
	return NewTables(
		map[string]string{
			"24/7 Streams":      logoHost + "247.png",
			"Wrestling":         logoHost + "Wrestling.png",
			"Football":          logoHost + "Football.png",
			"Basketball":        logoHost + "Basketball.png",
			"Baseball":          logoHost + "Baseball.png",
			"American Football": logoHost + "NFL3.png",
			"Combat Sports":     logoHost + "CombatSports2.png",
			"Darts":             logoHost + "Darts.png",
			"Motorsports":       logoHost + "Motorsports2.png",
			"Live Now":          logoHost + "DrewLiveSports.png",
			"Ice Hockey":        logoHost + "Hockey.png",
		},
		map[string]string{
			"24/7 Streams":      "PPVLand - Live Channels 24/7",
			"Wrestling":         "PPVLand - Wrestling Events",
			"Football":          "PPVLand - Global Football Streams",
			"Basketball":        "PPVLand - Basketball Hub",
			"Baseball":          "PPVLand - MLB",
			"American Football": "PPVLand - NFL Action",
			"Combat Sports":     "PPVLand - Combat Sports",
			"Darts":             "PPVLand - Darts",
			"Motorsports":       "PPVLand - Racing Action",
			"Live Now":          "PPVLand - Live Now",
			"Ice Hockey":        "PPVLand - NHL Action",
		},
		map[string]string{
			"American Football": "🏈",
			"Basketball":        "🏀",
			"Ice Hockey":        "🏒",
			"Baseball":          "⚾",
			"Combat Sports":     "🥊",
			"Wrestling":         "🤼",
			"Football":          "⚽",
			"Motorsports":       "🏎️",
			"Darts":             "🎯",
			"Live Now":          "📡",
			"24/7 Streams":      "📺",
		},
		logoHost+"Default.png",
		"📺",
	)
}
