package schedule_list

import (
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
)

// Buckets use a Monday-started week for the weekday labels.
const weekStartDay = time.Monday

type Bucket struct {
	Date   timezone.Date
	Label  string
	Events []schedule.Event
}

// Aggregate groups events by their local start date. Buckets come out in the
// order their date is first seen and events keep their input order inside a
// bucket; nothing is sorted. Callers wanting a chronological list sort the
// events by start before calling.
func Aggregate(events []schedule.Event, now time.Time, tz *timezone.Normalizer) []Bucket {
	today := tz.DateOf(now)

	buckets := make([]Bucket, 0)
	index := make(map[timezone.Date]int)
	for _, e := range events {
		date := tz.DateOf(e.Start)
		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, Bucket{
				Date:  date,
				Label: Label(date, today),
			})
		}
		buckets[i].Events = append(buckets[i].Events, e)
	}
	return buckets
}

// Label names a date relative to today: "Today", "Tomorrow", a weekday within
// the current week, "March 25" within the current month and
// "January 1, 2025" otherwise.
func Label(d, today timezone.Date) string {
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDays(1)):
		return "Tomorrow"
	case inWeekOf(d, today):
		return d.Weekday().String()
	case d.Year == today.Year && d.Month == today.Month:
		return d.Format("January 2")
	default:
		return d.Format("January 2, 2006")
	}
}

func inWeekOf(d, today timezone.Date) bool {
	start := today.StartOfWeek(weekStartDay)
	end := start.AddDays(6)
	return !d.Before(start) && !d.After(end)
}
