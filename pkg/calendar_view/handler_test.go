package calendar_view

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/schedule_sync"
	"github.com/klokku/agenda/pkg/timezone"
	"github.com/klokku/agenda/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, 11:00 in Warsaw.
var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

var grid = config.Grid{StartHour: 7, EndHour: 20, HeaderPixels: 50, PixelsPerHour: 60}

func testEvents() []schedule.Event {
	return []schedule.Event{
		{ID: "1", TaskID: 3, Title: "Standup", Start: now.Add(-2 * time.Hour), End: now.Add(-105 * time.Minute), Status: schedule.StatusPlanned, Color: "#FF0000"},
		{ID: "2", Title: "Yesterday", Start: now.Add(-20 * time.Hour), End: now.Add(-19 * time.Hour), Status: schedule.StatusCompleted},
		{ID: "3", Title: "Next week", Start: now.Add(72 * time.Hour), End: now.Add(73 * time.Hour), Status: schedule.StatusRescheduled},
	}
}

func setupHandlerTest(t *testing.T) (*Handler, *upstream.StubClient) {
	t.Helper()
	client := upstream.NewStubClient(testEvents(), []schedule.Task{{ID: 3, Title: "Gym", DefaultDuration: 45 * time.Minute}})
	snapshot := schedule_sync.NewService(client, event_bus.NewEventBus())
	require.NoError(t, snapshot.Refresh(context.Background()))

	tz, err := timezone.NewNormalizer("Europe/Warsaw")
	require.NoError(t, err)
	service := NewService(snapshot, client, grid, tz)
	service.clock = &utils.MockClock{FixedNow: now}
	return NewHandler(service), client
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var body T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestGetLayout_Week(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/layout?date=2024-03-15", nil)
	w := httptest.NewRecorder()

	handler.GetLayout(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	layout := decode[LayoutDTO](t, w)
	assert.Equal(t, "Europe/Warsaw", layout.Timezone)
	require.Len(t, layout.Columns, 7)
	assert.Equal(t, timezone.NewDate(2024, 3, 11), layout.Columns[0].Date)
	assert.Equal(t, "Mon", layout.Columns[0].Weekday)
	assert.True(t, layout.Columns[4].IsToday)
	assert.Len(t, layout.HourLabels, 13)
	assert.Equal(t, "7 AM", layout.HourLabels[0])

	require.Len(t, layout.Placements, 2)
	standup := layout.Placements[0]
	assert.Equal(t, "1", standup.EventID)
	assert.Equal(t, 4, standup.Column)
	assert.InDelta(t, 2.0/13*100, standup.Top, 1e-9)
	assert.InDelta(t, 0.25/13*100, standup.Height, 1e-9)
	assert.Equal(t, "#FF0000", standup.Background)
	assert.Equal(t, "#d70000", standup.Border)
	assert.Equal(t, now.Add(-2*time.Hour), standup.Start)

	yesterday := layout.Placements[1]
	assert.Equal(t, 3, yesterday.Column)
	assert.Equal(t, "#A8D8FF80", yesterday.Background)

	require.NotNil(t, layout.NowIndicator)
	assert.InDelta(t, 290.0/830*100, *layout.NowIndicator, 1e-9)
}

func TestGetLayout_DaysAndTimezoneOverride(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/layout?date=2024-03-15&days=1", nil)
	req.Header.Set(TimezoneHeader, "UTC")
	w := httptest.NewRecorder()

	handler.GetLayout(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	layout := decode[LayoutDTO](t, w)
	assert.Equal(t, "UTC", layout.Timezone)
	require.Len(t, layout.Columns, 1)
	require.Len(t, layout.Placements, 1)
	assert.InDelta(t, 1.0/13*100, layout.Placements[0].Top, 1e-9)
}

func TestGetLayout_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		zone   string
		status int
	}{
		{"missing date", "/api/calendar/layout", "", http.StatusBadRequest},
		{"malformed date", "/api/calendar/layout?date=15.03.2024", "", http.StatusBadRequest},
		{"days not a number", "/api/calendar/layout?date=2024-03-15&days=many", "", http.StatusBadRequest},
		{"too many days", "/api/calendar/layout?date=2024-03-15&days=40", "", http.StatusBadRequest},
		{"negative days", "/api/calendar/layout?date=2024-03-15&days=-1", "", http.StatusBadRequest},
		{"unknown zone", "/api/calendar/layout?date=2024-03-15", "Mars/Olympus", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupHandlerTest(t)
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.zone != "" {
				req.Header.Set(TimezoneHeader, tt.zone)
			}
			w := httptest.NewRecorder()

			handler.GetLayout(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestGetPointer(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/pointer?date=2024-03-15&y=0.25", nil)
	w := httptest.NewRecorder()

	handler.GetPointer(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	pointer := decode[PointerDTO](t, w)
	assert.Equal(t, "10:15", pointer.Time)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC), pointer.Instant)
}

func TestGetPointer_InvalidY(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/pointer?date=2024-03-15&y=top", nil)
	w := httptest.NewRecorder()

	handler.GetPointer(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func slotRequest(t *testing.T, body SlotRequestDTO) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/slot", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateSlot(t *testing.T) {
	handler, client := setupHandlerTest(t)
	w := httptest.NewRecorder()

	handler.CreateSlot(w, slotRequest(t, SlotRequestDTO{Date: timezone.NewDate(2024, 3, 15), Y: 0.5, TaskID: 3}))

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[EventDTO](t, w)
	assert.Equal(t, "Gym", created.Title)
	assert.Equal(t, "planned", created.Status)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC), created.Start)
	assert.Equal(t, time.Date(2024, 3, 15, 13, 15, 0, 0, time.UTC), created.End)

	require.Len(t, client.Created, 1)
	assert.Equal(t, schedule.StatusPlanned, client.Created[0].Status)
	assert.Len(t, handler.service.snapshot.Events(), 4)
}

func TestCreateSlot_UnknownTaskGetsOneHour(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	w := httptest.NewRecorder()

	handler.CreateSlot(w, slotRequest(t, SlotRequestDTO{Date: timezone.NewDate(2024, 3, 15), Y: 0, TaskID: 99}))

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[EventDTO](t, w)
	assert.Equal(t, time.Hour, created.End.Sub(created.Start))
	assert.Equal(t, time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC), created.Start)
}

func TestCreateSlot_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		handler, _ := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodPost, "/api/calendar/slot", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()

		handler.CreateSlot(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("missing task", func(t *testing.T) {
		handler, _ := setupHandlerTest(t)
		w := httptest.NewRecorder()

		handler.CreateSlot(w, slotRequest(t, SlotRequestDTO{Date: timezone.NewDate(2024, 3, 15), Y: 0.5}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("upstream down", func(t *testing.T) {
		handler, client := setupHandlerTest(t)
		client.Err = upstream.ErrUnavailable
		w := httptest.NewRecorder()

		handler.CreateSlot(w, slotRequest(t, SlotRequestDTO{Date: timezone.NewDate(2024, 3, 15), Y: 0.5, TaskID: 3}))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
	t.Run("read-only source", func(t *testing.T) {
		handler, _ := setupHandlerTest(t)
		handler.service.creator = nil
		w := httptest.NewRecorder()

		handler.CreateSlot(w, slotRequest(t, SlotRequestDTO{Date: timezone.NewDate(2024, 3, 15), Y: 0.5, TaskID: 3}))

		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})
}

func TestGetUpcoming(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/upcoming", nil)
	w := httptest.NewRecorder()

	handler.GetUpcoming(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	buckets := decode[[]BucketDTO](t, w)
	require.Len(t, buckets, 2)
	assert.Equal(t, "Today", buckets[0].Label)
	assert.Equal(t, "1", buckets[0].Events[0].ID)
	assert.Equal(t, "March 18", buckets[1].Label)
	assert.Equal(t, schedule.DefaultRescheduledColor, buckets[1].Events[0].Background)
}

func TestGetHealth(t *testing.T) {
	handler, client := setupHandlerTest(t)
	w := httptest.NewRecorder()

	handler.GetHealth(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthDTO](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.RefreshCount)
	assert.NotNil(t, health.LastRefresh)

	client.Err = upstream.ErrUnavailable
	_ = handler.service.snapshot.Refresh(context.Background())
	w = httptest.NewRecorder()

	handler.GetHealth(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, "degraded", decode[HealthDTO](t, w).Status)
}

func TestLogRefreshes(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(nil, nil, grid, timezone.NewNormalizerIn(time.UTC))
	unsubscribe := service.LogRefreshes(bus)
	defer unsubscribe()

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.SnapshotRefreshedType,
		event_bus.SnapshotRefreshed{Events: testEvents(), At: now}))

	assert.NoError(t, err)
}
