package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

type Theme struct {
	foreground color.Color
	base       lipgloss.Style
	header     lipgloss.Style
	muted      lipgloss.Style
}

func New() Theme {
	var t Theme

	t.foreground = ColorWhite
	t.base = lipgloss.NewStyle().Foreground(t.foreground)
	t.header = lipgloss.NewStyle().Foreground(t.foreground).Bold(true)
	t.muted = lipgloss.NewStyle().Foreground(ColorDim)

	return t
}

func (t Theme) Base() lipgloss.Style   { return t.base }
func (t Theme) Header() lipgloss.Style { return t.header }
func (t Theme) Muted() lipgloss.Style  { return t.muted }

func (t Theme) Foreground() color.Color {
	return t.foreground
}
