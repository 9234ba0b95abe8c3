package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var styles = NewPalette("#3B82F6", "#10B981", "#EF4444", "#F59E0B", "#6B7280")

// Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	banner   lipgloss.Style
	card     lipgloss.Style
	selected lipgloss.Style
	toast    lipgloss.Style
}

func NewPalette(accent, success, danger, warning, muted string) *Palette {
	return &Palette{
		title:    NewBold("#FFFFFF").MarginBottom(1),
		ok:       NewBold(success),
		err:      NewBold(danger),
		warn:     NewStyle(warning),
		help:     NewEm(muted),
		muted:    NewStyle(muted),
		accent:   NewBold(accent),
		banner:   NewStyle(danger).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(danger)).Padding(0, 1),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151")).Padding(0, 1),
		selected: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(accent)).Padding(0, 1),
		toast:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#333333")).Padding(0, 1),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
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

// hueColor converts a color-wheel angle into a saturated hex color for placeholder art.
func hueColor(hue float64) lipgloss.Color {
	return lipgloss.Color(colorful.Hsl(hue, 0.7, 0.5).Hex())
}

var _ Painter = (*Palette)(nil)
