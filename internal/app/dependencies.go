package app

import (
	"fmt"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/pkg/calendar_view"
	"github.com/klokku/agenda/pkg/ics_source"
	"github.com/klokku/agenda/pkg/schedule_sync"
	"github.com/klokku/agenda/pkg/stats"
	"github.com/klokku/agenda/pkg/timezone"
	"github.com/klokku/agenda/pkg/upstream"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Timezone *timezone.Normalizer

	Source         schedule_sync.Source
	UpstreamClient upstream.Client
	Snapshot       *schedule_sync.Service

	CalendarViewService *calendar_view.Service
	CalendarViewHandler *calendar_view.Handler

	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	tz, err := timezone.NewNormalizer(cfg.Grid.Timezone)
	if err != nil {
		return nil, fmt.Errorf("grid timezone: %w", err)
	}
	deps.Timezone = tz
	deps.EventBus = event_bus.NewEventBus()

	var creator calendar_view.Creator
	switch cfg.Upstream.Kind {
	case config.UpstreamICS:
		deps.Source = ics_source.NewFileSource(cfg.Upstream.IcsPath)
	default:
		client := upstream.NewClient(cfg.Upstream)
		deps.UpstreamClient = client
		deps.Source = client
		creator = client
	}
	deps.Snapshot = schedule_sync.NewService(deps.Source, deps.EventBus)

	deps.CalendarViewService = calendar_view.NewService(deps.Snapshot, creator, cfg.Grid, deps.Timezone)
	deps.CalendarViewService.LogRefreshes(deps.EventBus)
	deps.CalendarViewHandler = calendar_view.NewHandler(deps.CalendarViewService)

	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.Snapshot, deps.CsvStatsRenderer, deps.Timezone)

	return deps, nil
}
