package event_bus

import (
	"time"

	"github.com/klokku/agenda/pkg/schedule"
)

const SnapshotRefreshedType EventType = "schedule.snapshot.refreshed"

// SnapshotRefreshed is published after the upstream events and tasks were
// fetched again.
type SnapshotRefreshed struct {
	Events []schedule.Event
	Tasks  []schedule.Task
	At     time.Time
}
