package time_grid

import (
	"fmt"
	"time"

	"github.com/klokku/agenda/pkg/timezone"
)

type Column struct {
	Date    timezone.Date
	Weekday string
	IsToday bool
}

// Columns describes the header of every visible day.
func (e *Engine) Columns(config GridConfig, now time.Time) []Column {
	today := e.tz.DateOf(now)
	columns := make([]Column, 0, len(config.Days))
	for _, d := range config.Days {
		columns = append(columns, Column{
			Date:    d,
			Weekday: d.Weekday().String()[:3],
			IsToday: d.Equal(today),
		})
	}
	return columns
}

// HourLabels returns one "7 AM" style label per visible hour row.
func HourLabels(config GridConfig) []string {
	labels := make([]string, 0, max(config.Span(), 0))
	for h := config.StartHour; h < config.EndHour; h++ {
		labels = append(labels, hourLabel(h))
	}
	return labels
}

func hourLabel(hour int) string {
	suffix := "AM"
	if hour%24 >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}
