package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/klokku/agenda/pkg/schedule"
	"github.com/klokku/agenda/pkg/timezone"
)

type TaskStats struct {
	TaskID    int
	Title     string
	Planned   time.Duration
	Completed time.Duration
}

type DailyStats struct {
	Date      timezone.Date
	Tasks     []TaskStats
	TotalTime time.Duration
}

// StatsSummary totals scheduled time over a range of days. Rescheduled events
// only count towards Rescheduled; their time is spent on the event they were
// moved to.
type StatsSummary struct {
	StartDate      timezone.Date
	EndDate        timezone.Date
	Days           []DailyStats
	Tasks          []TaskStats
	TotalPlanned   time.Duration
	TotalCompleted time.Duration
	Rescheduled    int
}

func (s StatsSummary) TotalTime() time.Duration {
	return s.TotalPlanned + s.TotalCompleted
}

// Summarize totals events per day and per task. Events are attributed to the
// local date they start on, the same way the grid places them.
func Summarize(events []schedule.Event, days []timezone.Date, tz *timezone.Normalizer) StatsSummary {
	summary := StatsSummary{Days: make([]DailyStats, 0, len(days))}
	if len(days) == 0 {
		return summary
	}
	summary.StartDate = days[0]
	summary.EndDate = days[len(days)-1]

	dayIndex := make(map[timezone.Date]int, len(days))
	perDay := make([]map[string]*TaskStats, len(days))
	for i, d := range days {
		dayIndex[d] = i
		perDay[i] = make(map[string]*TaskStats)
		summary.Days = append(summary.Days, DailyStats{Date: d})
	}
	totals := make(map[string]*TaskStats)

	for _, e := range events {
		i, ok := dayIndex[tz.DateOf(e.Start)]
		if !ok {
			continue
		}
		if e.Status == schedule.StatusRescheduled {
			summary.Rescheduled++
			continue
		}
		duration := max(e.Duration(), 0)

		for _, stats := range []*TaskStats{taskStats(perDay[i], e), taskStats(totals, e)} {
			if e.Status == schedule.StatusCompleted {
				stats.Completed += duration
			} else {
				stats.Planned += duration
			}
		}
		summary.Days[i].TotalTime += duration
		if e.Status == schedule.StatusCompleted {
			summary.TotalCompleted += duration
		} else {
			summary.TotalPlanned += duration
		}
	}

	for i := range summary.Days {
		summary.Days[i].Tasks = sortedTasks(perDay[i])
	}
	summary.Tasks = sortedTasks(totals)
	return summary
}

// taskStats groups by task id, or by title for events without a task such as
// those read from an ICS file.
func taskStats(byTask map[string]*TaskStats, e schedule.Event) *TaskStats {
	key := "title:" + e.Title
	if e.TaskID != 0 {
		key = "task:" + strconv.Itoa(e.TaskID)
	}
	stats, ok := byTask[key]
	if !ok {
		stats = &TaskStats{TaskID: e.TaskID, Title: e.Title}
		byTask[key] = stats
	}
	return stats
}

func sortedTasks(byTask map[string]*TaskStats) []TaskStats {
	tasks := make([]TaskStats, 0, len(byTask))
	for _, stats := range byTask {
		tasks = append(tasks, *stats)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Title != tasks[j].Title {
			return tasks[i].Title < tasks[j].Title
		}
		return tasks[i].TaskID < tasks[j].TaskID
	})
	return tasks
}
