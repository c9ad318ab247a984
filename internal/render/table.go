package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/render/theme"
)

const observedLayout = "2006-01-02 15:04"

type column struct {
	title string
	width int
}

var observationColumns = []column{
	{"ID", 6},
	{"SPECIES", 28},
	{"LOCATION", 24},
	{"OBSERVED", 17},
	{"DEPTH", 11},
	{"STATUS", 10},
}

// Observations renders observations as a fixed-width table.
func Observations(observations []marine.Observation) string {
	t := theme.New()
	if len(observations) == 0 {
		return t.Muted().Render("No observations.")
	}

	rows := make([]string, 0, len(observations)+1)

	header := make([]string, len(observationColumns))
	for i, c := range observationColumns {
		header[i] = cell(t.Header(), c.title, c.width)
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, o := range observations {
		values := []string{
			strconv.FormatInt(o.ID, 10),
			species(o),
			o.LocationName,
			formatObserved(o.ObservationDatetime),
			formatDepth(o.DepthMin, o.DepthMax),
		}
		cells := make([]string, 0, len(observationColumns))
		for i, v := range values {
			cells = append(cells, cell(t.Base(), v, observationColumns[i].width))
		}
		last := observationColumns[len(observationColumns)-1]
		cells = append(cells, cell(statusStyle(o.Validated), string(o.Validated), last.width))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(strings.Join(rows, "\n"))
}

// Profile renders the signed-in user.
func Profile(p *marine.Profile) string {
	t := theme.New()
	line := t.Header().Render(p.Username) + " " + t.Muted().Render("<"+p.Email+">")
	if p.Role != "" {
		line += " " + t.Base().Render(string(p.Role))
	}
	return line
}

func cell(style lipgloss.Style, value string, width int) string {
	return style.Width(width).PaddingRight(1).Render(truncate(value, width-1))
}

func species(o marine.Observation) string {
	if o.CommonName != nil && *o.CommonName != "" {
		return fmt.Sprintf("%s (%s)", o.SpeciesName, *o.CommonName)
	}
	return o.SpeciesName
}

func formatObserved(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(observedLayout)
}

func formatDepth(lo, hi *float64) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%g-%gm", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf(">%gm", *lo)
	case hi != nil:
		return fmt.Sprintf("<%gm", *hi)
	default:
		return "-"
	}
}

func statusStyle(s marine.ValidationStatus) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch s {
	case marine.ValidationValidated:
		return style.Foreground(theme.ColorValidated)
	case marine.ValidationRejected:
		return style.Foreground(theme.ColorRejected)
	default:
		return style.Foreground(theme.ColorPending)
	}
}
