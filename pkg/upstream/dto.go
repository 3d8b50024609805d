package upstream

import (
	"fmt"
	"strconv"
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
)

type taskDTO struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	// EstimatedDuration is in minutes.
	EstimatedDuration int `json:"estimatedDuration"`
}

type scheduleDTO struct {
	ID            int          `json:"id"`
	Task          taskDTO      `json:"task"`
	StartTime     string       `json:"startTime"`
	EndTime       string       `json:"endTime"`
	Status        string       `json:"status"`
	RescheduledTo *scheduleDTO `json:"rescheduledTo"`
	Notes         *string      `json:"notes"`
}

type createScheduleDTO struct {
	TaskID    int     `json:"taskId"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

func (t taskDTO) toTask() schedule.Task {
	return schedule.Task{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Color:           t.Color,
		DefaultDuration: time.Duration(t.EstimatedDuration) * time.Minute,
	}
}

// toEvent keeps only the id of the rescheduled-to schedule; the nested object
// is never retained.
func (s scheduleDTO) toEvent() (schedule.Event, error) {
	start, err := timezone.ParseInstant(s.StartTime)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("schedule %d start: %w", s.ID, err)
	}
	end, err := timezone.ParseInstant(s.EndTime)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("schedule %d end: %w", s.ID, err)
	}
	status, err := schedule.ParseStatus(s.Status)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("schedule %d: %w", s.ID, err)
	}

	event := schedule.Event{
		ID:          strconv.Itoa(s.ID),
		TaskID:      s.Task.ID,
		Title:       s.Task.Title,
		Description: s.Task.Description,
		Start:       start,
		End:         end,
		Status:      status,
		Color:       s.Task.Color,
	}
	if s.RescheduledTo != nil {
		event.RescheduledTo = strconv.Itoa(s.RescheduledTo.ID)
	}
	if s.Notes != nil {
		event.Notes = *s.Notes
	}
	return event, nil
}

func toEvents(dtos []scheduleDTO) ([]schedule.Event, error) {
	events := make([]schedule.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, err := dto.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
