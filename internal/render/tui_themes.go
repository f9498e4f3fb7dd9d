package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the colour set the TUI draws with
type Palette struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	// ActiveTab highlights the selected tab and focused inputs
	ActiveTab lipgloss.Color
	User      lipgloss.Color
	Assistant lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text  lipgloss.Color
	Muted lipgloss.Color
}

var (
	TokyoNightPalette = Palette{
		Name:        "tokyonight",
		Description: "Tokyo Night, blue accents (default)",
		Surface:     lipgloss.Color("#24283b"),
		Border:      lipgloss.Color("#414868"),
		ActiveTab:   lipgloss.Color("#7aa2f7"),
		User:        lipgloss.Color("#bb9af7"),
		Assistant:   lipgloss.Color("#7aa2f7"),
		Success:     lipgloss.Color("#9ece6a"),
		Warning:     lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		Muted:       lipgloss.Color("#565f89"),
	}

	CatppuccinPalette = Palette{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",
		Surface:     lipgloss.Color("#313244"),
		Border:      lipgloss.Color("#45475a"),
		ActiveTab:   lipgloss.Color("#89b4fa"),
		User:        lipgloss.Color("#cba6f7"),
		Assistant:   lipgloss.Color("#89b4fa"),
		Success:     lipgloss.Color("#a6e3a1"),
		Warning:     lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		Muted:       lipgloss.Color("#6c7086"),
	}

	NordPalette = Palette{
		Name:        "nord",
		Description: "Nord, cool arctic tones",
		Surface:     lipgloss.Color("#3b4252"),
		Border:      lipgloss.Color("#4c566a"),
		ActiveTab:   lipgloss.Color("#88c0d0"),
		User:        lipgloss.Color("#b48ead"),
		Assistant:   lipgloss.Color("#88c0d0"),
		Success:     lipgloss.Color("#a3be8c"),
		Warning:     lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		Muted:       lipgloss.Color("#7b88a1"),
	}

	// LightPalette suits bright terminals
	LightPalette = Palette{
		Name:        "light",
		Description: "Light background",
		Surface:     lipgloss.Color("#e9e9ec"),
		Border:      lipgloss.Color("#a8aecb"),
		ActiveTab:   lipgloss.Color("#2563eb"),
		User:        lipgloss.Color("#7c3aed"),
		Assistant:   lipgloss.Color("#2563eb"),
		Success:     lipgloss.Color("#15803d"),
		Warning:     lipgloss.Color("#b45309"),
		Error:       lipgloss.Color("#b91c1c"),
		Text:        lipgloss.Color("#1f2937"),
		Muted:       lipgloss.Color("#6b7280"),
	}
)

var currentPalette = TokyoNightPalette

// CurrentPalette returns the active palette
func CurrentPalette() Palette {
	return currentPalette
}

// SetPalette activates the palette called name. Unknown names are ignored.
func SetPalette(name string) bool {
	p, ok := PaletteByName(name)
	if ok {
		currentPalette = p
	}
	return ok
}

// PaletteByName finds a palette, ignoring case
func PaletteByName(name string) (Palette, bool) {
	for _, p := range Palettes() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Palette{}, false
}

// Palettes lists the built-in palettes
func Palettes() []Palette {
	return []Palette{TokyoNightPalette, CatppuccinPalette, NordPalette, LightPalette}
}

// PaletteNames lists the built-in palette names
func PaletteNames() []string {
	all := Palettes()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}
