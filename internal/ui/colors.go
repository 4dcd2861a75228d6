package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/bookx/internal/models"
)

// Page colors per reader theme: background, text, accent, muted.
var themeColors = map[models.Theme][4]string{
	models.ThemeLight: {"#FFFFFF", "#1A1A1A", "#7D56F4", "#626262"},
	models.ThemeSepia: {"#F4ECD8", "#5B4636", "#A0522D", "#8B7B6B"},
	models.ThemeDark:  {"#1E1E1E", "#E0E0E0", "#BB9AF7", "#7A7A7A"},
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	page  lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	panel lipgloss.Style
}

// NewPalette builds the stylesheet for a reader theme. Unknown themes use light.
func NewPalette(theme models.Theme) *Palette {
	c, ok := themeColors[theme]
	if !ok {
		c = themeColors[models.ThemeLight]
	}
	bg, fg, accent, muted := c[0], c[1], c[2], c[3]

	return &Palette{
		title: NewBold(accent).Background(lipgloss.Color(bg)).MarginBottom(1),
		page:  NewStyle(fg).Background(lipgloss.Color(bg)).Padding(1, 2),
		ok:    NewBold("#04B575"),
		err:   NewBold("#FF0000"),
		warn:  NewStyle("#FFA500"),
		help:  NewEm(muted),
		panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(accent)).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
