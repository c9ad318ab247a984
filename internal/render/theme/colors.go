package theme

import "charm.land/lipgloss/v2"

var (
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
)

var (
	ColorUser    = lipgloss.Color("#00C2D1") // sightings logged by users
	ColorCurated = lipgloss.Color("#FF8C42") // OBIS and other curated records
)

var (
	ColorValidated = lipgloss.Color("#16EC06")
	ColorPending   = lipgloss.Color("#FFDE00")
	ColorRejected  = lipgloss.Color("#FF0026")
)

var ColorBorder = lipgloss.Color("#283339")
