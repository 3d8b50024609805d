package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/klokku/agenda/pkg/calendar_view"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/schedule_list"
	"github.com/klokku/agenda/pkg/timezone"
)

const OutputJSON = "json"

// Viewer is the part of the calendar view service the commands print.
type Viewer interface {
	Zone(tz *timezone.Normalizer) *timezone.Normalizer
	Upcoming(tz *timezone.Normalizer) []schedule_list.Bucket
	Week(date timezone.Date, days int, tz *timezone.Normalizer) (calendar_view.Week, error)
}

var (
	labelColor   = color.New(color.Bold, color.FgCyan)
	statusColors = map[schedule.Status]*color.Color{
		schedule.StatusPlanned:     color.New(color.FgBlue),
		schedule.StatusCompleted:   color.New(color.FgGreen),
		schedule.StatusRescheduled: color.New(color.FgYellow),
	}
)

func statusText(s schedule.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s)
	}
	return string(s)
}

func clockRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("15:04") + "-" + end.In(loc).Format("15:04")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List prints upcoming events grouped by day.
type List struct {
	Viewer   Viewer
	Timezone *timezone.Normalizer
	Output   string
	Out      io.Writer
}

func (l *List) Do(ctx context.Context) error {
	buckets := l.Viewer.Upcoming(l.Timezone)
	if l.Output == OutputJSON {
		return writeJSON(l.Out, calendar_view.BucketsToDTO(buckets))
	}

	if len(buckets) == 0 {
		_, err := fmt.Fprintln(l.Out, "Nothing scheduled.")
		return err
	}

	loc := l.Viewer.Zone(l.Timezone).Location()
	for i, b := range buckets {
		if i > 0 {
			_, _ = fmt.Fprintln(l.Out)
		}
		_, _ = labelColor.Fprintln(l.Out, b.Label)

		tbl := uitable.New()
		tbl.Separator = "  "
		for _, e := range b.Events {
			tbl.AddRow(clockRange(e.Start, e.End, loc), e.Title, statusText(e.Status))
		}
		if _, err := fmt.Fprintln(l.Out, tbl); err != nil {
			return err
		}
	}
	return nil
}

// Week prints the grid placements of one week.
type Week struct {
	Viewer   Viewer
	Timezone *timezone.Normalizer
	Date     timezone.Date
	Days     int
	Output   string
	Out      io.Writer
}

func (w *Week) Do(ctx context.Context) error {
	week, err := w.Viewer.Week(w.Date, w.Days, w.Timezone)
	if err != nil {
		return err
	}
	if w.Output == OutputJSON {
		return writeJSON(w.Out, calendar_view.WeekToDTO(week))
	}

	loc := w.Viewer.Zone(w.Timezone).Location()
	_, _ = labelColor.Fprintf(w.Out, "%s - %s (%s)\n",
		week.Grid.Days[0], week.Grid.Days[len(week.Grid.Days)-1], week.Zone)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("DAY", "TIME", "TITLE", "STATUS", "TOP", "HEIGHT")
	for _, p := range week.Layout.Placements {
		column := week.Columns[p.ColumnIndex]
		event := week.Events[p.EventID]
		day := column.Weekday + " " + column.Date.Format("Jan 2")
		if column.IsToday {
			day = color.New(color.Bold).Sprint(day)
		}
		tbl.AddRow(day, clockRange(event.Start, event.End, loc), p.Title, statusText(p.Status),
			fmt.Sprintf("%.1f%%", p.TopPercent), fmt.Sprintf("%.1f%%", p.HeightPercent))
	}
	if _, err := fmt.Fprintln(w.Out, tbl); err != nil {
		return err
	}

	if week.Layout.NowIndicator != nil {
		_, err = fmt.Fprintf(w.Out, "Now: %.1f%%\n", *week.Layout.NowIndicator)
	} else {
		_, err = fmt.Fprintln(w.Out, "Now: outside visible hours")
	}
	return err
}
