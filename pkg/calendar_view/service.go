package calendar_view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/schedule_list"
	"github.com/klokku/agenda/pkg/schedule_sync"
	"github.com/klokku/agenda/pkg/time_grid"
	"github.com/klokku/agenda/pkg/timezone"
	"github.com/klokku/agenda/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSlotDuration = time.Hour
	maxDays             = 31
	weekStartDay        = time.Monday
)

var ErrInvalidDays = errors.New("days out of range")
var ErrReadOnly = errors.New("event source is read-only")

// Snapshot is the in-memory copy of upstream data the views are built from.
type Snapshot interface {
	Events() []schedule.Event
	Task(id int) (schedule.Task, bool)
	Refresh(ctx context.Context) error
	Status() schedule_sync.Status
}

// Creator creates events upstream.
type Creator interface {
	CreateSchedule(ctx context.Context, s upstream.NewSchedule) (schedule.Event, error)
}

type Week struct {
	Grid      time_grid.GridConfig
	Layout    time_grid.Layout
	Columns   []time_grid.Column
	Labels    []string
	Events    schedule.Lookup
	Today     timezone.Date
	Zone      string
	Generated time.Time
}

type Pointer struct {
	Time    time_grid.TimeOfDay
	Instant time.Time
}

type Service struct {
	snapshot Snapshot
	creator  Creator
	grid     config.Grid
	tz       *timezone.Normalizer
	clock    utils.Clock
}

// NewService builds the view service. creator may be nil when the source
// cannot accept new events.
func NewService(snapshot Snapshot, creator Creator, grid config.Grid, tz *timezone.Normalizer) *Service {
	return &Service{
		snapshot: snapshot,
		creator:  creator,
		grid:     grid,
		tz:       tz,
		clock:    &utils.SystemClock{},
	}
}

// Zone returns tz, or the configured zone when tz is nil.
func (s *Service) Zone(tz *timezone.Normalizer) *timezone.Normalizer {
	if tz == nil {
		return s.tz
	}
	return tz
}

// Days returns the visible dates: the Monday week containing date when days
// is 0, otherwise days consecutive dates starting at date.
func Days(date timezone.Date, days int) ([]timezone.Date, error) {
	if days == 0 {
		return date.Week(weekStartDay), nil
	}
	if days < 0 || days > maxDays {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidDays, days, maxDays)
	}
	return date.Span(days), nil
}

func (s *Service) gridConfig(days []timezone.Date) time_grid.GridConfig {
	return time_grid.GridConfig{
		StartHour:     s.grid.StartHour,
		EndHour:       s.grid.EndHour,
		Days:          days,
		HeaderPixels:  s.grid.HeaderPixels,
		PixelsPerHour: s.grid.PixelsPerHour,
	}
}

func (s *Service) Week(date timezone.Date, days int, tz *timezone.Normalizer) (Week, error) {
	tz = s.Zone(tz)
	visible, err := Days(date, days)
	if err != nil {
		return Week{}, err
	}

	now := s.clock.Now()
	grid := s.gridConfig(visible)
	engine := time_grid.NewEngine(tz)
	events := s.snapshot.Events()

	layout, err := engine.Layout(events, grid, now)
	if err != nil {
		return Week{}, err
	}

	return Week{
		Grid:      grid,
		Layout:    layout,
		Columns:   engine.Columns(grid, now),
		Labels:    time_grid.HourLabels(grid),
		Events:    schedule.NewLookup(events),
		Today:     tz.DateOf(now),
		Zone:      tz.Location().String(),
		Generated: now,
	}, nil
}

// Pointer resolves a click at yFraction of the column showing date.
func (s *Service) Pointer(date timezone.Date, yFraction float64, tz *timezone.Normalizer) (Pointer, error) {
	grid := s.gridConfig([]timezone.Date{date})
	tod, err := time_grid.Resolve(yFraction, grid)
	if err != nil {
		return Pointer{}, err
	}
	instant, err := time_grid.NewEngine(s.Zone(tz)).ResolveAt(yFraction, 0, grid)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{Time: tod, Instant: instant}, nil
}

// CreateSlot creates a planned event for taskID starting where the pointer
// resolves. It lasts the task's default duration, one hour when the task is
// unknown or has none.
func (s *Service) CreateSlot(ctx context.Context, date timezone.Date, yFraction float64, taskID int, notes string, tz *timezone.Normalizer) (schedule.Event, error) {
	if s.creator == nil {
		return schedule.Event{}, ErrReadOnly
	}
	pointer, err := s.Pointer(date, yFraction, tz)
	if err != nil {
		return schedule.Event{}, err
	}

	duration := defaultSlotDuration
	if task, ok := s.snapshot.Task(taskID); ok && task.DefaultDuration > 0 {
		duration = task.DefaultDuration
	}

	created, err := s.creator.CreateSchedule(ctx, upstream.NewSchedule{
		TaskID: taskID,
		Start:  pointer.Instant,
		End:    pointer.Instant.Add(duration),
		Status: schedule.StatusPlanned,
		Notes:  notes,
	})
	if err != nil {
		return schedule.Event{}, err
	}
	log.Infof("Created event %s for task %d at %s", created.ID, taskID, pointer.Instant.Format(time.RFC3339))

	if err := s.snapshot.Refresh(ctx); err != nil {
		log.Warnf("Failed to refresh snapshot after creating event %s: %v", created.ID, err)
	}
	return created, nil
}

// Upcoming groups the events starting today or later into day buckets, in
// chronological order.
func (s *Service) Upcoming(tz *timezone.Normalizer) []schedule_list.Bucket {
	tz = s.Zone(tz)
	now := s.clock.Now()
	from := tz.StartOfDay(tz.DateOf(now))

	upcoming := make([]schedule.Event, 0)
	for _, e := range s.snapshot.Events() {
		if !e.Start.Before(from) {
			upcoming = append(upcoming, e)
		}
	}
	return schedule_list.Aggregate(schedule.SortByStart(upcoming), now, tz)
}

func (s *Service) Status() schedule_sync.Status {
	return s.snapshot.Status()
}

// LogRefreshes subscribes to snapshot refreshes on bus.
func (s *Service) LogRefreshes(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.SnapshotRefreshedType, func(e event_bus.EventT[event_bus.SnapshotRefreshed]) error {
		today := s.tz.DateOf(e.Data.At)
		visible := 0
		for _, ev := range e.Data.Events {
			if !s.tz.DateOf(ev.Start).Before(today) {
				visible++
			}
		}
		log.Infof("Snapshot refreshed at %s: %d events (%d from today), %d tasks",
			e.Data.At.Format(time.RFC3339), len(e.Data.Events), visible, len(e.Data.Tasks))
		return nil
	})
}
