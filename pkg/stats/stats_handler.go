package stats

import (
	"net/http"
	"time"

	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
	log "github.com/sirupsen/logrus"
)

const weekStartDay = time.Monday

type EventSource interface {
	Events() []schedule.Event
}

type TaskStatsDTO struct {
	TaskID    int    `json:"taskId"`
	Title     string `json:"title"`
	Planned   int    `json:"planned"`
	Completed int    `json:"completed"`
}

type DailyStatsDTO struct {
	Date      timezone.Date  `json:"date"`
	Tasks     []TaskStatsDTO `json:"tasks"`
	TotalTime int            `json:"totalTime"`
}

// StatsSummaryDTO carries durations in seconds.
type StatsSummaryDTO struct {
	StartDate      timezone.Date   `json:"startDate"`
	EndDate        timezone.Date   `json:"endDate"`
	Days           []DailyStatsDTO `json:"days"`
	Tasks          []TaskStatsDTO  `json:"tasks"`
	TotalPlanned   int             `json:"totalPlanned"`
	TotalCompleted int             `json:"totalCompleted"`
	TotalTime      int             `json:"totalTime"`
	Rescheduled    int             `json:"rescheduled"`
}

type StatsHandler struct {
	events   EventSource
	renderer StatsRenderer
	tz       *timezone.Normalizer
	clock    utils.Clock
}

func NewStatsHandler(events EventSource, renderer StatsRenderer, tz *timezone.Normalizer) *StatsHandler {
	return &StatsHandler{events, renderer, tz, &utils.SystemClock{}}
}

// GetStats summarizes the Monday week containing ?date, today when absent.
// The zone can be overridden with the X-Timezone header.
func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	tz := handler.tz
	if name := r.Header.Get("X-Timezone"); name != "" {
		var err error
		if tz, err = timezone.NewNormalizer(name); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid timezone", err.Error())
			return
		}
	}

	date := tz.DateOf(handler.clock.Now())
	if dateString := r.URL.Query().Get("date"); dateString != "" {
		var err error
		if date, err = timezone.ParseDate(dateString); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "date must be in YYYY-MM-DD format")
			return
		}
	}

	stats := Summarize(handler.events.Events(), date.Week(weekStartDay), tz)

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.renderer.RenderStats(stats)
		if err != nil {
			rest.WriteError(w, http.StatusInternalServerError, "Failed to render stats", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("Failed to write stats: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, convertToJsonResponse(stats))
}

func taskStatsToDTO(tasks []TaskStats) []TaskStatsDTO {
	dtos := make([]TaskStatsDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, TaskStatsDTO{
			TaskID:    t.TaskID,
			Title:     t.Title,
			Planned:   int(t.Planned.Seconds()),
			Completed: int(t.Completed.Seconds()),
		})
	}
	return dtos
}

func convertToJsonResponse(stats StatsSummary) StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		days = append(days, DailyStatsDTO{
			Date:      day.Date,
			Tasks:     taskStatsToDTO(day.Tasks),
			TotalTime: int(day.TotalTime.Seconds()),
		})
	}

	return StatsSummaryDTO{
		StartDate:      stats.StartDate,
		EndDate:        stats.EndDate,
		Days:           days,
		Tasks:          taskStatsToDTO(stats.Tasks),
		TotalPlanned:   int(stats.TotalPlanned.Seconds()),
		TotalCompleted: int(stats.TotalCompleted.Seconds()),
		TotalTime:      int(stats.TotalTime().Seconds()),
		Rescheduled:    stats.Rescheduled,
	}
}
