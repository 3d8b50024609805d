package schedule

import (
	"fmt"
	"sort"
	"time"
)

type Status string

const (
	StatusPlanned     Status = "planned"
	StatusCompleted   Status = "completed"
	StatusRescheduled Status = "rescheduled"
)

var ErrUnknownStatus = fmt.Errorf("unknown schedule status")

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlanned, StatusCompleted, StatusRescheduled:
		return Status(s), nil
	case "":
		return StatusPlanned, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Event is a scheduled session of a task. Start and End are UTC instants.
type Event struct {
	ID          string
	TaskID      int
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Status      Status
	// RescheduledTo is the ID of the event this one was moved to, empty when
	// not rescheduled. Resolve it through a Lookup.
	RescheduledTo string
	Color         string
	Notes         string
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Task is a catalog entry events are scheduled from.
type Task struct {
	ID              int
	Title           string
	Description     string
	Color           string
	DefaultDuration time.Duration
}

// SortByStart returns a copy of events ordered by start time. Events with
// equal start keep their relative order.
func SortByStart(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

// Lookup indexes events by ID.
type Lookup map[string]Event

func NewLookup(events []Event) Lookup {
	l := make(Lookup, len(events))
	for _, e := range events {
		l[e.ID] = e
	}
	return l
}

// Resolve returns the event the given one was rescheduled to, one hop only.
func (l Lookup) Resolve(e Event) (Event, bool) {
	if e.RescheduledTo == "" {
		return Event{}, false
	}
	target, ok := l[e.RescheduledTo]
	return target, ok
}

// Final follows the reschedule chain to its last known event. A cycle or a
// dangling reference ends the walk at the last event reached.
func (l Lookup) Final(e Event) Event {
	visited := map[string]bool{e.ID: true}
	current := e
	for {
		next, ok := l.Resolve(current)
		if !ok || visited[next.ID] {
			return current
		}
		visited[next.ID] = true
		current = next
	}
}
