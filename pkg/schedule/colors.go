package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPlannedColor     = "#A8D8FF"
	DefaultRescheduledColor = "#FFE5B4"
	// completedAlpha is appended to the planned colour, roughly 50% opacity.
	completedAlpha = "80"
	borderDarken   = 40
)

type Colors struct {
	Background string
	Border     string
}

// DisplayColors derives the box colours of an event from its status and
// colour hint.
func DisplayColors(e Event) Colors {
	planned := e.Color
	if planned == "" {
		planned = DefaultPlannedColor
	}

	var background string
	switch e.Status {
	case StatusCompleted:
		background = planned + completedAlpha
	case StatusRescheduled:
		background = DefaultRescheduledColor
	default:
		background = planned
	}

	return Colors{
		Background: background,
		Border:     darker(background),
	}
}

// darker subtracts a fixed amount from each RGB channel of a #RRGGBB[AA]
// colour. Alpha is dropped. Unparsable colours are returned unchanged.
func darker(color string) string {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color
	}
	rgb, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return color
	}
	r := max(0, int(rgb>>16)-borderDarken)
	g := max(0, int((rgb>>8)&0xFF)-borderDarken)
	b := max(0, int(rgb&0xFF)-borderDarken)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
