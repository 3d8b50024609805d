package timezone

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return dateFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return dateFromTime(t), nil
}

func dateFromTime(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// midnight is only used for calendar arithmetic, UTC has no DST to skip days.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return dateFromTime(d.midnight().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

func (d Date) After(other Date) bool {
	return d.midnight().After(other.midnight())
}

// StartOfWeek returns the most recent weekStartDay on or before d.
func (d Date) StartOfWeek(weekStartDay time.Weekday) Date {
	delta := (int(d.Weekday()) - int(weekStartDay) + 7) % 7
	return d.AddDays(-delta)
}

// Week returns the seven consecutive dates of the week containing d.
func (d Date) Week(weekStartDay time.Weekday) []Date {
	return d.StartOfWeek(weekStartDay).Span(7)
}

// Span returns n consecutive dates starting at d.
func (d Date) Span(n int) []Date {
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, d.AddDays(i))
	}
	return days
}

// Format renders the date with a time layout, e.g. "January 2".
func (d Date) Format(layout string) string {
	return d.midnight().Format(layout)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
