package schedule_sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refreshedAt = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *upstream.StubClient, *event_bus.EventBus) {
	t.Helper()
	events := []schedule.Event{
		{ID: "1", Title: "Standup", Start: refreshedAt, End: refreshedAt.Add(15 * time.Minute)},
	}
	tasks := []schedule.Task{{ID: 3, Title: "Gym", DefaultDuration: 45 * time.Minute}}
	client := upstream.NewStubClient(events, tasks)
	bus := event_bus.NewEventBus()
	service := NewService(client, bus)
	service.clock = &utils.MockClock{FixedNow: refreshedAt}
	t.Cleanup(service.Stop)
	return service, client, bus
}

func TestService_Refresh(t *testing.T) {
	service, _, bus := setup(t)
	var published []event_bus.SnapshotRefreshed
	event_bus.SubscribeTyped(bus, event_bus.SnapshotRefreshedType, func(e event_bus.EventT[event_bus.SnapshotRefreshed]) error {
		published = append(published, e.Data)
		return nil
	})

	require.NoError(t, service.Refresh(context.Background()))

	assert.Len(t, service.Events(), 1)
	assert.Len(t, service.Tasks(), 1)
	status := service.Status()
	assert.Equal(t, refreshedAt, status.LastRefresh)
	assert.Equal(t, 1, status.RefreshCount)
	assert.Empty(t, status.LastError)

	require.Len(t, published, 1)
	assert.Equal(t, refreshedAt, published[0].At)
	assert.Equal(t, "Standup", published[0].Events[0].Title)
}

func TestService_FailedRefreshKeepsSnapshot(t *testing.T) {
	service, client, _ := setup(t)
	require.NoError(t, service.Refresh(context.Background()))

	client.Err = upstream.ErrUnavailable
	err := service.Refresh(context.Background())

	assert.ErrorIs(t, err, upstream.ErrUnavailable)
	assert.Len(t, service.Events(), 1)
	status := service.Status()
	assert.Equal(t, 1, status.RefreshCount)
	assert.Contains(t, status.LastError, "upstream unavailable")
}

func TestService_SubscriberFailureDoesNotFailRefresh(t *testing.T) {
	service, _, bus := setup(t)
	bus.Subscribe(event_bus.SnapshotRefreshedType, func(e event_bus.Event) error {
		return errors.New("subscriber down")
	})

	assert.NoError(t, service.Refresh(context.Background()))
}

func TestService_ReadersGetCopies(t *testing.T) {
	service, _, _ := setup(t)
	require.NoError(t, service.Refresh(context.Background()))

	events := service.Events()
	events[0].Title = "changed"

	assert.Equal(t, "Standup", service.Events()[0].Title)
}

func TestService_Task(t *testing.T) {
	service, _, _ := setup(t)
	require.NoError(t, service.Refresh(context.Background()))

	task, ok := service.Task(3)
	assert.True(t, ok)
	assert.Equal(t, "Gym", task.Title)

	_, ok = service.Task(4)
	assert.False(t, ok)
}

func TestService_Start(t *testing.T) {
	service, _, _ := setup(t)

	require.NoError(t, service.Start("@every 1s"))
	assert.ErrorIs(t, service.Start("@every 1s"), ErrAlreadyStarted)

	require.Eventually(t, func() bool {
		return service.Status().RefreshCount > 0
	}, 5*time.Second, 50*time.Millisecond)

	service.Stop()
	service.Stop()
}

func TestService_StartInvalidSpec(t *testing.T) {
	service, _, _ := setup(t)

	err := service.Start("every minute please")

	assert.ErrorContains(t, err, "invalid refresh schedule")
}
