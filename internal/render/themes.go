package render

import "slices"

// Glamour's standard style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// StyleInfo describes a markdown style for display
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the standard glamour styles
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark terminals (default)"},
		{Name: StyleLight, Description: "Light terminals"},
		{Name: StyleDracula, Description: "Dracula colours"},
		{Name: StyleTokyoNight, Description: "Tokyo Night colours"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleNoTTY, Description: "Plain text, no colour"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// StyleNames returns the standard style names
func StyleNames() []string {
	styles := AvailableStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.Name
	}
	return names
}

// IsBuiltinStyle reports whether style names a standard glamour style.
// Anything else is treated as a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	return slices.Contains(StyleNames(), style)
}
