package schedule_sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var ErrAlreadyStarted = errors.New("snapshot refresh already started")

// Source is where snapshots are fetched from: the agenda API client or an
// ICS file.
type Source interface {
	GetSchedules(ctx context.Context) ([]schedule.Event, error)
	GetTasks(ctx context.Context) ([]schedule.Task, error)
}

type Status struct {
	LastRefresh  time.Time
	RefreshCount int
	LastError    string
}

// Service keeps the most recent events and tasks in memory.
type Service struct {
	source  Source
	bus     *event_bus.EventBus
	clock   utils.Clock
	timeout time.Duration

	mu          sync.RWMutex
	events      []schedule.Event
	tasks       []schedule.Task
	lastRefresh time.Time
	count       int
	lastErr     error

	cronMu sync.Mutex
	cron   *cron.Cron
}

func NewService(source Source, bus *event_bus.EventBus) *Service {
	return &Service{
		source:  source,
		bus:     bus,
		clock:   &utils.SystemClock{},
		timeout: 30 * time.Second,
	}
}

// Refresh fetches a new snapshot and replaces the current one. On failure the
// previous snapshot is kept.
func (s *Service) Refresh(ctx context.Context) error {
	events, err := s.source.GetSchedules(ctx)
	if err != nil {
		s.recordError(err)
		return fmt.Errorf("failed to refresh schedules: %w", err)
	}
	tasks, err := s.source.GetTasks(ctx)
	if err != nil {
		s.recordError(err)
		return fmt.Errorf("failed to refresh tasks: %w", err)
	}

	at := s.clock.Now()
	s.mu.Lock()
	s.events = events
	s.tasks = tasks
	s.lastRefresh = at
	s.count++
	s.lastErr = nil
	s.mu.Unlock()

	log.Debugf("Snapshot refreshed: %d events, %d tasks", len(events), len(tasks))

	if s.bus != nil {
		payload := event_bus.SnapshotRefreshed{Events: s.Events(), Tasks: s.Tasks(), At: at}
		if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.SnapshotRefreshedType, payload)); err != nil {
			log.Warnf("Snapshot refresh subscribers failed: %v", err)
		}
	}
	return nil
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Events returns a copy of the snapshot events.
func (s *Service) Events() []schedule.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Event{}, s.events...)
}

func (s *Service) Tasks() []schedule.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Task{}, s.tasks...)
}

// Task finds a snapshot task by id.
func (s *Service) Task(id int) (schedule.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return schedule.Task{}, false
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := Status{LastRefresh: s.lastRefresh, RefreshCount: s.count}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// Start schedules Refresh with a cron spec such as "@every 1m". Overlapping
// runs are skipped.
func (s *Service) Start(spec string) error {
	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			log.Errorf("Scheduled snapshot refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	log.Infof("Snapshot refresh scheduled: %s", spec)
	return nil
}

// Stop halts the cron and waits for a running refresh to finish.
func (s *Service) Stop() {
	s.cronMu.Lock()
	c := s.cron
	s.cron = nil
	s.cronMu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}
