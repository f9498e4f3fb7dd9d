// Package render turns assistant replies into styled terminal text.
package render

// Options selects how assistant markdown is drawn. Options is comparable
// and keys the renderer pools directly.
type Options struct {
	// Width is the wrap column; 0 disables wrapping
	Width int
	// Style is a glamour standard style name or a path to a JSON style
	Style     string
	Emoji     bool
	TableWrap bool
}

// DefaultOptions matches the default markdown config at 80 columns
func DefaultOptions() Options {
	return Options{Width: 80, Style: StyleDark, Emoji: true, TableWrap: true}
}

// WithWidth returns a copy wrapping at width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
