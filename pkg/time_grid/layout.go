package time_grid

import (
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
	log "github.com/sirupsen/logrus"
)

// Placement is the position of one event inside its day column, in percent
// of the column body height.
type Placement struct {
	EventID       string
	ColumnIndex   int
	TopPercent    float64
	HeightPercent float64
	Title         string
	Status        schedule.Status
	Color         string
}

type Layout struct {
	Placements []Placement
	// NowIndicator is the offset of the current time line in percent of the
	// column including its header, nil when now is outside the visible hours.
	NowIndicator *float64
}

// Engine lays events out on the grid. It keeps no state between calls, every
// result depends only on the arguments and the viewer's zone.
type Engine struct {
	tz *timezone.Normalizer
}

func NewEngine(tz *timezone.Normalizer) *Engine {
	return &Engine{tz: tz}
}

// Layout places events on the columns of config. Events are matched to a
// column by their local start date only, so an event running past midnight is
// drawn in its start column and never continues into the next one. Events
// starting on a day that is not shown are skipped.
func (e *Engine) Layout(events []schedule.Event, config GridConfig, now time.Time) (Layout, error) {
	if err := config.Validate(); err != nil {
		return Layout{}, err
	}

	span := float64(config.Span())
	placements := make([]Placement, 0, len(events))
	for _, event := range events {
		start := e.tz.ToLocal(event.Start)
		column := config.ColumnOf(start.Date())
		if column < 0 {
			continue
		}
		end := e.tz.ToLocal(event.End)

		top := clamp01((start.HourOfDay()-float64(config.StartHour))/span) * 100
		height := (end.HourOfDay() - start.HourOfDay()) / span * 100
		if height <= 0 {
			height = MinHeightPercent
		}

		placements = append(placements, Placement{
			EventID:       event.ID,
			ColumnIndex:   column,
			TopPercent:    top,
			HeightPercent: height,
			Title:         event.Title,
			Status:        event.Status,
			Color:         event.Color,
		})
	}
	log.Tracef("laid out %d of %d events on %d columns", len(placements), len(events), len(config.Days))

	return Layout{
		Placements:   placements,
		NowIndicator: e.nowIndicator(config, now),
	}, nil
}

// NowIndicator returns the offset of the current time line, nil when hidden.
func (e *Engine) NowIndicator(config GridConfig, now time.Time) (*float64, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return e.nowIndicator(config, now), nil
}

func (e *Engine) nowIndicator(config GridConfig, now time.Time) *float64 {
	hour := e.tz.ToLocal(now).HourOfDay()
	if hour < float64(config.StartHour) || hour > float64(config.EndHour) {
		return nil
	}

	pixelsPerHour := config.pixelsPerHour()
	header := config.headerPixels()
	gridPixels := float64(config.Span()) * pixelsPerHour
	fromTop := (hour-float64(config.StartHour))*pixelsPerHour + header

	percent := fromTop / (gridPixels + header) * 100
	return &percent
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
