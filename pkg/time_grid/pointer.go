package time_grid

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klokku/agenda/pkg/timezone"
)

var ErrColumnOutOfRange = errors.New("column out of range")

// TimeOfDay is a local time with minute precision. Hour may be 24 when the
// pointer is at the very bottom of a grid ending at midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Resolve maps a vertical pointer position inside a column body, 0 at the top
// and 1 at the bottom, to a time of day. The result is always rounded down
// to the whole minute. Positions outside [0,1] are clamped.
func Resolve(yFraction float64, config GridConfig) (TimeOfDay, error) {
	if err := config.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	if math.IsNaN(yFraction) {
		yFraction = 0
	}
	yFraction = clamp01(yFraction)

	totalMinutes := int(math.Floor(yFraction * float64(config.Span()) * 60))
	return TimeOfDay{
		Hour:   totalMinutes/60 + config.StartHour,
		Minute: totalMinutes % 60,
	}, nil
}

// ResolveAt resolves the pointer inside the given column and returns the
// absolute instant of that time on the column's date.
func (e *Engine) ResolveAt(yFraction float64, column int, config GridConfig) (time.Time, error) {
	tod, err := Resolve(yFraction, config)
	if err != nil {
		return time.Time{}, err
	}
	if column < 0 || column >= len(config.Days) {
		return time.Time{}, fmt.Errorf("%w: %d not in [0,%d)", ErrColumnOutOfRange, column, len(config.Days))
	}
	day := config.Days[column]

	return e.tz.ToAbsolute(timezone.WallClock{
		Year:   day.Year,
		Month:  day.Month,
		Day:    day.Day,
		Hour:   tod.Hour,
		Minute: tod.Minute,
	}), nil
}
