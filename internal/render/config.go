package render

import (
	"os"

	"github.com/diogo/ragchat/internal/config"
)

// Glamour standard styles accepted by Options.Style
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// MarkdownStyles lists the standard style names
func MarkdownStyles() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleNoTTY, StyleASCII}
}

// OptionsFromConfig builds render options from the markdown section of the
// user config. GLAMOUR_STYLE wins over the configured style.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	opts := DefaultOptions().WithWidth(width)
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.Emoji = md.EnableEmoji
	opts.TableWrap = md.TableWrap

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}
