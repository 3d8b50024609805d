package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")
var ErrUnknownTimezone = errors.New("unknown timezone")

// instantLayouts are tried in order. RFC3339 also accepts fractional seconds.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// WallClock is an instant as seen on the viewer's wall clock. It carries no
// zone information on purpose; the Normalizer that produced it knows the zone.
type WallClock struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Date returns the calendar date part.
func (w WallClock) Date() Date {
	return Date{Year: w.Year, Month: w.Month, Day: w.Day}
}

// HourOfDay returns hours since local midnight with minute precision, e.g. 9.5 for 09:30.
func (w WallClock) HourOfDay() float64 {
	return float64(w.Hour) + float64(w.Minute)/60
}

func (w WallClock) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second)
}

// Normalizer converts between stored UTC instants and the viewer's wall clock.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer loads the IANA zone by name. An empty name means "Local".
func NewNormalizer(name string) (*Normalizer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Local"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownTimezone, name, err)
	}
	return &Normalizer{loc: loc}, nil
}

// NewNormalizerIn wraps an already loaded location. Nil falls back to UTC.
func NewNormalizerIn(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ToLocal expresses the instant in the viewer's zone. The offset applied is the
// one in effect at the instant itself, not at the time of the call.
func (n *Normalizer) ToLocal(instant time.Time) WallClock {
	t := instant.In(n.loc)
	year, month, day := t.Date()
	return WallClock{
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// ToAbsolute turns a wall clock reading back into a UTC instant. Readings that
// fall into a DST gap or overlap resolve the way time.Date does.
func (n *Normalizer) ToAbsolute(w WallClock) time.Time {
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, w.Nanosecond, n.loc).UTC()
}

// DateOf returns the local calendar date of the instant.
func (n *Normalizer) DateOf(instant time.Time) Date {
	return n.ToLocal(instant).Date()
}

// StartOfDay returns the UTC instant of local midnight of d.
func (n *Normalizer) StartOfDay(d Date) time.Time {
	return n.ToAbsolute(WallClock{Year: d.Year, Month: d.Month, Day: d.Day})
}

// ParseInstant parses an RFC3339 timestamp into a UTC instant.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// ParseLocal parses a zone-less "2006-01-02T15:04[:05]" value.
func ParseLocal(s string) (WallClock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			year, month, day := t.Date()
			return WallClock{
				Year:   year,
				Month:  month,
				Day:    day,
				Hour:   t.Hour(),
				Minute: t.Minute(),
				Second: t.Second(),
			}, nil
		}
	}
	return WallClock{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
