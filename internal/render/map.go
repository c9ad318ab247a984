package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	drawille "github.com/exrook/drawille-go"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/render/theme"
)

const (
	DefaultMapCols = 60
	DefaultMapRows = 15

	// a lone point or a line of points still gets a visible extent
	minSpanDegrees = 1.0
)

// Bounds is the geographic box a map is drawn over.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundsOf returns the smallest box holding every marker, padded to at least
// minSpanDegrees on each axis.
func BoundsOf(markers []marine.Marker) Bounds {
	b := Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLng: math.Inf(1), MaxLng: math.Inf(-1),
	}
	for _, m := range markers {
		b.MinLat = min(b.MinLat, m.Latitude)
		b.MaxLat = max(b.MaxLat, m.Latitude)
		b.MinLng = min(b.MinLng, m.Longitude)
		b.MaxLng = max(b.MaxLng, m.Longitude)
	}
	b.MinLat, b.MaxLat = widen(b.MinLat, b.MaxLat)
	b.MinLng, b.MaxLng = widen(b.MinLng, b.MaxLng)
	return b
}

func widen(lo, hi float64) (float64, float64) {
	if span := hi - lo; span < minSpanDegrees {
		pad := (minSpanDegrees - span) / 2
		return lo - pad, hi + pad
	}
	return lo, hi
}

// project maps a coordinate into a dotsW x dotsH braille dot grid with north
// at the top.
func (b Bounds) project(lat, lng float64, dotsW, dotsH int) (int, int) {
	x := (lng - b.MinLng) / (b.MaxLng - b.MinLng) * float64(dotsW-1)
	y := (b.MaxLat - lat) / (b.MaxLat - b.MinLat) * float64(dotsH-1)
	return clamp(int(math.Round(x)), dotsW-1), clamp(int(math.Round(y)), dotsH-1)
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}

// Map draws markers as a braille scatter plot cols characters wide and rows
// characters tall, followed by a legend. User sightings and curated records
// are drawn in separate colours; a cell holding both takes the user colour.
func Map(markers []marine.Marker, cols, rows int) string {
	t := theme.New()
	if len(markers) == 0 {
		return t.Muted().Render("No observations in this area.")
	}
	if cols <= 0 {
		cols = DefaultMapCols
	}
	if rows <= 0 {
		rows = DefaultMapRows
	}

	var (
		dotsW   = cols * 2
		dotsH   = rows * 4
		bounds  = BoundsOf(markers)
		user    = drawille.NewCanvas()
		curated = drawille.NewCanvas()
	)

	for _, m := range markers {
		x, y := bounds.project(m.Latitude, m.Longitude, dotsW, dotsH)
		if m.Kind == marine.MarkerUser {
			user.Set(x, y)
		} else {
			curated.Set(x, y)
		}
	}

	plot := overlayLayers(
		canvasString(&curated, dotsW, dotsH),
		canvasString(&user, dotsW, dotsH),
		theme.ColorCurated,
		theme.ColorUser,
	)

	framed := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(plot)

	return lipgloss.JoinVertical(lipgloss.Left,
		framed,
		t.Muted().Render(bounds.String()),
		Legend(markers),
	)
}

func (b Bounds) String() string {
	return fmt.Sprintf("lat %.2f..%.2f  lng %.2f..%.2f", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// Legend counts markers by kind.
func Legend(markers []marine.Marker) string {
	var users, curated int
	for _, m := range markers {
		if m.Kind == marine.MarkerUser {
			users++
		} else {
			curated++
		}
	}

	t := theme.New()
	entry := func(c color.Color, label string, n int) string {
		return lipgloss.NewStyle().Foreground(c).Render("●") + " " + t.Base().Render(fmt.Sprintf("%s (%d)", label, n))
	}
	return entry(theme.ColorUser, "user sighting", users) + "   " + entry(theme.ColorCurated, "curated record", curated)
}

// canvasString extracts the canvas as a string with consistent dimensions.
// Each braille char is 2 dots wide and 4 dots tall.
func canvasString(canvas *drawille.Canvas, width, height int) string {
	var (
		charWidth  = width / 2
		charHeight = height / 4
		rows       = canvas.Rows(0, 0, width, height)
		lines      = make([]string, 0, charHeight)
		blank      = strings.Repeat(string(emptyBraille), charWidth)
	)

	for i := range charHeight {
		if i >= len(rows) {
			lines = append(lines, blank)
			continue
		}
		line := []rune(rows[i])
		switch {
		case len(line) < charWidth:
			line = append(line, []rune(strings.Repeat(string(emptyBraille), charWidth-len(line)))...)
		case len(line) > charWidth:
			line = line[:charWidth]
		}
		lines = append(lines, string(line))
	}

	return strings.Join(lines, "\n")
}

// overlayLayers combines two braille layers of equal shape. Dots from top are
// ORed onto bottom and the combined cell takes top's colour.
func overlayLayers(bottom, top string, bottomColor, topColor color.Color) string {
	var (
		bottomLines = strings.Split(bottom, "\n")
		topLines    = strings.Split(top, "\n")
		result      = make([]string, 0, len(bottomLines))
		bottomStyle = lipgloss.NewStyle().Foreground(bottomColor)
		topStyle    = lipgloss.NewStyle().Foreground(topColor)
	)

	for i, line := range bottomLines {
		bottomRunes := []rune(line)
		var topRunes []rune
		if i < len(topLines) {
			topRunes = []rune(topLines[i])
		}

		var b strings.Builder
		for j, bc := range bottomRunes {
			tc := emptyBraille
			if j < len(topRunes) {
				tc = topRunes[j]
			}

			switch {
			case hasDots(tc) && hasDots(bc):
				b.WriteString(topStyle.Render(string(combineBraille(bc, tc))))
			case hasDots(tc):
				b.WriteString(topStyle.Render(string(tc)))
			case hasDots(bc):
				b.WriteString(bottomStyle.Render(string(bc)))
			default:
				b.WriteRune(' ')
			}
		}
		result = append(result, b.String())
	}

	return strings.Join(result, "\n")
}
