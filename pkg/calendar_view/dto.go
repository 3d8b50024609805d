package calendar_view

import (
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/schedule_list"
	"github.com/klokku/agenda/pkg/timezone"
)

type ColumnDTO struct {
	Date    timezone.Date `json:"date"`
	Weekday string        `json:"weekday"`
	IsToday bool          `json:"isToday"`
}

type PlacementDTO struct {
	EventID    string    `json:"eventId"`
	Column     int       `json:"column"`
	Top        float64   `json:"top"`
	Height     float64   `json:"height"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Background string    `json:"background"`
	Border     string    `json:"border"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

type LayoutDTO struct {
	Timezone     string         `json:"timezone"`
	StartHour    int            `json:"startHour"`
	EndHour      int            `json:"endHour"`
	Columns      []ColumnDTO    `json:"columns"`
	HourLabels   []string       `json:"hourLabels"`
	Placements   []PlacementDTO `json:"placements"`
	NowIndicator *float64       `json:"nowIndicator"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}

type PointerDTO struct {
	Time    string    `json:"time"`
	Instant time.Time `json:"instant"`
}

type SlotRequestDTO struct {
	Date   timezone.Date `json:"date"`
	Y      float64       `json:"y"`
	TaskID int           `json:"taskId"`
	Notes  string        `json:"notes,omitempty"`
}

type EventDTO struct {
	ID            string    `json:"id"`
	TaskID        int       `json:"taskId"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Status        string    `json:"status"`
	RescheduledTo string    `json:"rescheduledTo,omitempty"`
	Background    string    `json:"background"`
	Border        string    `json:"border"`
	Notes         string    `json:"notes,omitempty"`
}

type BucketDTO struct {
	Date   timezone.Date `json:"date"`
	Label  string        `json:"label"`
	Events []EventDTO    `json:"events"`
}

type HealthDTO struct {
	Status       string     `json:"status"`
	LastRefresh  *time.Time `json:"lastRefresh"`
	RefreshCount int        `json:"refreshCount"`
	LastError    string     `json:"lastError,omitempty"`
}

func WeekToDTO(week Week) LayoutDTO {
	columns := make([]ColumnDTO, 0, len(week.Columns))
	for _, c := range week.Columns {
		columns = append(columns, ColumnDTO{Date: c.Date, Weekday: c.Weekday, IsToday: c.IsToday})
	}

	placements := make([]PlacementDTO, 0, len(week.Layout.Placements))
	for _, p := range week.Layout.Placements {
		event := week.Events[p.EventID]
		colors := schedule.DisplayColors(schedule.Event{Status: p.Status, Color: p.Color})
		placements = append(placements, PlacementDTO{
			EventID:    p.EventID,
			Column:     p.ColumnIndex,
			Top:        p.TopPercent,
			Height:     p.HeightPercent,
			Title:      p.Title,
			Status:     string(p.Status),
			Background: colors.Background,
			Border:     colors.Border,
			Start:      event.Start,
			End:        event.End,
		})
	}

	return LayoutDTO{
		Timezone:     week.Zone,
		StartHour:    week.Grid.StartHour,
		EndHour:      week.Grid.EndHour,
		Columns:      columns,
		HourLabels:   week.Labels,
		Placements:   placements,
		NowIndicator: week.Layout.NowIndicator,
		GeneratedAt:  week.Generated,
	}
}

func EventToDTO(e schedule.Event) EventDTO {
	colors := schedule.DisplayColors(e)
	return EventDTO{
		ID:            e.ID,
		TaskID:        e.TaskID,
		Title:         e.Title,
		Description:   e.Description,
		Start:         e.Start,
		End:           e.End,
		Status:        string(e.Status),
		RescheduledTo: e.RescheduledTo,
		Background:    colors.Background,
		Border:        colors.Border,
		Notes:         e.Notes,
	}
}

func BucketsToDTO(buckets []schedule_list.Bucket) []BucketDTO {
	dtos := make([]BucketDTO, 0, len(buckets))
	for _, b := range buckets {
		events := make([]EventDTO, 0, len(b.Events))
		for _, e := range b.Events {
			events = append(events, EventToDTO(e))
		}
		dtos = append(dtos, BucketDTO{Date: b.Date, Label: b.Label, Events: events})
	}
	return dtos
}
