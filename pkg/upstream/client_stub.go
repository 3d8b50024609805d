package upstream

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/klokku/agenda/pkg/schedule"
)

// StubClient is an in-memory Client for tests.
type StubClient struct {
	mu      sync.Mutex
	events  []schedule.Event
	tasks   []schedule.Task
	nextId  int
	Err     error
	Created []NewSchedule
}

func NewStubClient(events []schedule.Event, tasks []schedule.Task) *StubClient {
	return &StubClient{events: events, tasks: tasks, nextId: 1000}
}

func (c *StubClient) GetSchedules(ctx context.Context) ([]schedule.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]schedule.Event(nil), c.events...), nil
}

func (c *StubClient) GetSchedulesInRange(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	var result []schedule.Event
	for _, e := range c.events {
		if e.Start.Before(to) && e.End.After(from) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (c *StubClient) GetTasks(ctx context.Context) ([]schedule.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]schedule.Task(nil), c.tasks...), nil
}

func (c *StubClient) CreateSchedule(ctx context.Context, s NewSchedule) (schedule.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return schedule.Event{}, c.Err
	}
	c.nextId++
	c.Created = append(c.Created, s)

	event := schedule.Event{
		ID:     strconv.Itoa(c.nextId),
		TaskID: s.TaskID,
		Start:  s.Start,
		End:    s.End,
		Status: s.Status,
		Notes:  s.Notes,
	}
	for _, t := range c.tasks {
		if t.ID == s.TaskID {
			event.Title = t.Title
			event.Color = t.Color
		}
	}
	c.events = append(c.events, event)
	return event, nil
}

func (c *StubClient) SetEvents(events []schedule.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = events
}
