package time_grid

import (
	"testing"
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Europe/Warsaw")

var friday = timezone.NewDate(2024, time.March, 15)

func weekConfig(startHour, endHour int) GridConfig {
	return GridConfig{
		StartHour: startHour,
		EndHour:   endHour,
		Days:      friday.Week(time.Monday),
	}
}

func utcEvent(id string, day timezone.Date, startH, startM, endH, endM int) schedule.Event {
	return schedule.Event{
		ID:     id,
		Start:  time.Date(day.Year, day.Month, day.Day, startH, startM, 0, 0, time.UTC),
		End:    time.Date(day.Year, day.Month, day.Day, endH, endM, 0, 0, time.UTC),
		Status: schedule.StatusPlanned,
	}
}

func TestEngine_LayoutGeometry(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	got, err := engine.Layout([]schedule.Event{utcEvent("1", friday, 9, 0, 10, 30)}, weekConfig(6, 24), now)

	require.NoError(t, err)
	require.Len(t, got.Placements, 1)
	p := got.Placements[0]
	assert.Equal(t, "1", p.EventID)
	assert.Equal(t, 4, p.ColumnIndex)
	assert.InDelta(t, 16.6667, p.TopPercent, 1e-3)
	assert.InDelta(t, 8.3333, p.HeightPercent, 1e-3)
}

func TestEngine_LayoutUsesViewerTimezone(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(location))
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	events := []schedule.Event{
		// 08:00 UTC is 09:00 in Warsaw (CET).
		utcEvent("morning", friday, 8, 0, 9, 30),
		// 23:30 UTC on Friday is 00:30 on Saturday in Warsaw.
		utcEvent("late", friday, 23, 30, 23, 45),
	}

	got, err := engine.Layout(events, weekConfig(0, 24), now)

	require.NoError(t, err)
	require.Len(t, got.Placements, 2)
	assert.Equal(t, 4, got.Placements[0].ColumnIndex)
	assert.InDelta(t, 9.0/24*100, got.Placements[0].TopPercent, 1e-9)
	assert.Equal(t, 5, got.Placements[1].ColumnIndex)
	assert.InDelta(t, 0.5/24*100, got.Placements[1].TopPercent, 1e-9)
}

func TestEngine_LayoutEdgeCases(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	config := weekConfig(6, 24)

	tests := []struct {
		name       string
		event      schedule.Event
		wantPlaced bool
		wantTop    float64
		wantHeight float64
	}{
		{
			name: "crossing midnight is clamped to a sliver",
			event: schedule.Event{
				ID:    "overnight",
				Start: time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC),
			},
			wantPlaced: true,
			wantTop:    17.0 / 18 * 100,
			wantHeight: MinHeightPercent,
		},
		{
			name:       "zero length",
			event:      utcEvent("zero", friday, 12, 0, 12, 0),
			wantPlaced: true,
			wantTop:    6.0 / 18 * 100,
			wantHeight: MinHeightPercent,
		},
		{
			name:       "starts before visible hours",
			event:      utcEvent("early", friday, 5, 0, 7, 0),
			wantPlaced: true,
			wantTop:    0,
			wantHeight: 2.0 / 18 * 100,
		},
		{
			name:       "day not visible",
			event:      utcEvent("next week", timezone.NewDate(2024, 3, 18), 9, 0, 10, 0),
			wantPlaced: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Layout([]schedule.Event{tt.event}, config, now)
			require.NoError(t, err)
			if !tt.wantPlaced {
				assert.Empty(t, got.Placements)
				return
			}
			require.Len(t, got.Placements, 1)
			assert.InDelta(t, tt.wantTop, got.Placements[0].TopPercent, 1e-9)
			assert.InDelta(t, tt.wantHeight, got.Placements[0].HeightPercent, 1e-9)
		})
	}
}

func TestEngine_LayoutStaysWithinColumn(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := weekConfig(7, 20)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	var events []schedule.Event
	for startMinute := 7 * 60; startMinute < 20*60; startMinute += 17 {
		for _, length := range []int{1, 15, 45, 90} {
			endMinute := min(startMinute+length, 20*60)
			if endMinute <= startMinute {
				continue
			}
			events = append(events, utcEvent("e", friday, startMinute/60, startMinute%60, endMinute/60, endMinute%60))
		}
	}

	got, err := engine.Layout(events, config, now)

	require.NoError(t, err)
	require.Len(t, got.Placements, len(events))
	for _, p := range got.Placements {
		assert.GreaterOrEqual(t, p.TopPercent, 0.0)
		assert.LessOrEqual(t, p.TopPercent+p.HeightPercent, 100+1e-9)
	}
}

func TestEngine_LayoutIsDeterministic(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(location))
	config := weekConfig(6, 24)
	now := time.Date(2024, time.March, 15, 14, 7, 0, 0, time.UTC)
	events := []schedule.Event{
		utcEvent("a", friday, 9, 0, 10, 30),
		utcEvent("b", timezone.NewDate(2024, 3, 11), 6, 15, 7, 0),
		utcEvent("c", timezone.NewDate(2024, 3, 17), 22, 0, 23, 0),
	}

	first, err := engine.Layout(events, config, now)
	require.NoError(t, err)
	second, err := engine.Layout(events, config, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_LayoutKeepsCallerColumnOrder(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := GridConfig{
		StartHour: 0,
		EndHour:   24,
		Days:      []timezone.Date{timezone.NewDate(2024, 3, 17), friday},
	}

	got, err := engine.Layout([]schedule.Event{utcEvent("1", friday, 9, 0, 10, 0)}, config, time.Time{})

	require.NoError(t, err)
	require.Len(t, got.Placements, 1)
	assert.Equal(t, 1, got.Placements[0].ColumnIndex)
}

func TestEngine_LayoutPassesThroughDisplayFields(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	event := utcEvent("1", friday, 9, 0, 10, 0)
	event.Title = "Deep work"
	event.Color = "#FF0000"
	event.Status = schedule.StatusCompleted

	got, err := engine.Layout([]schedule.Event{event}, weekConfig(6, 24), time.Time{})

	require.NoError(t, err)
	require.Len(t, got.Placements, 1)
	assert.Equal(t, "Deep work", got.Placements[0].Title)
	assert.Equal(t, "#FF0000", got.Placements[0].Color)
	assert.Equal(t, schedule.StatusCompleted, got.Placements[0].Status)
}

func TestEngine_NowIndicator(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := weekConfig(6, 24)

	tests := []struct {
		name string
		now  time.Time
		want *float64
	}{
		{"before start hour", time.Date(2024, 3, 15, 5, 30, 0, 0, time.UTC), nil},
		{"at start hour", time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC), ptr(50.0 / 1130 * 100)},
		{"afternoon", time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC), ptr(590.0 / 1130 * 100)},
		{"half past", time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC), ptr(80.0 / 1130 * 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.NowIndicator(config, tt.now)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestEngine_NowIndicatorAfterEndHour(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := weekConfig(7, 20)

	got, err := engine.Layout(nil, config, time.Date(2024, 3, 15, 20, 1, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Nil(t, got.NowIndicator)
	assert.Empty(t, got.Placements)
}

func TestEngine_NowIndicatorCustomHeader(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := GridConfig{StartHour: 0, EndHour: 10, HeaderPixels: 100, PixelsPerHour: 10}

	got, err := engine.NowIndicator(config, time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 150.0/200*100, *got, 1e-9)
}

func TestGridConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		startHour int
		endHour   int
		wantErr   bool
	}{
		{"full day", 0, 24, false},
		{"office hours", 7, 20, false},
		{"equal hours", 10, 10, true},
		{"reversed", 20, 7, true},
		{"negative start", -1, 10, true},
		{"end past midnight", 6, 25, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GridConfig{StartHour: tt.startHour, EndHour: tt.endHour}
			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRangeConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngine_LayoutRejectsConfigBeforeReadingEvents(t *testing.T) {
	engine := NewEngine(timezone.NewNormalizerIn(time.UTC))
	config := GridConfig{StartHour: 10, EndHour: 10, Days: []timezone.Date{friday}}

	got, err := engine.Layout([]schedule.Event{utcEvent("1", friday, 10, 0, 11, 0)}, config, time.Now())

	assert.ErrorIs(t, err, ErrOutOfRangeConfig)
	assert.Empty(t, got.Placements)
	assert.Nil(t, got.NowIndicator)
}

func ptr(v float64) *float64 {
	return &v
}
