// Package render turns Markdown into styled terminal output and holds the
// colour palettes used by the chat interface.
package render

// DefaultWidth is used when no terminal width is known
const DefaultWidth = 80

// Options configures the markdown renderer
type Options struct {
	// Width is the word-wrap column. Zero falls back to DefaultWidth.
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	// PreserveNewLines keeps single line breaks from the reply
	PreserveNewLines bool

	// EnableEmoji converts :emoji: shortcodes
	EnableEmoji bool
}

// DefaultOptions returns the default configuration
func DefaultOptions() Options {
	return Options{
		Width:            DefaultWidth,
		Style:            StyleDark,
		PreserveNewLines: true,
	}
}

// WithWidth returns a copy with the given width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy with the given style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithPreserveNewLines returns a copy with newline preservation set
func (o Options) WithPreserveNewLines(enabled bool) Options {
	o.PreserveNewLines = enabled
	return o
}

// WithEmoji returns a copy with emoji conversion set
func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Style == "" {
		o.Style = StyleDark
	}
	return o
}
