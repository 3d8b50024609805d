package stats

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one column per task and one row per day, followed by
// the completed and total rows.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	header := make([]string, 0, len(stats.Tasks)+2)
	header = append(header, "")
	for _, task := range stats.Tasks {
		header = append(header, task.Title)
	}
	header = append(header, "SUM")

	data := make([][]string, 0, len(stats.Days)+3)
	data = append(data, header)
	for _, day := range stats.Days {
		data = append(data, dayRow(day, stats.Tasks))
	}

	completed := []string{"Completed"}
	total := []string{"Total"}
	for _, task := range stats.Tasks {
		completed = append(completed, durationToString(task.Completed))
		total = append(total, durationToString(task.Planned+task.Completed))
	}
	completed = append(completed, durationToString(stats.TotalCompleted))
	total = append(total, durationToString(stats.TotalTime()))
	data = append(data, completed, total)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func dayRow(day DailyStats, tasks []TaskStats) []string {
	row := make([]string, 0, len(tasks)+2)
	row = append(row, day.Date.Format("02/01/2006"))
	for _, task := range tasks {
		spent := time.Duration(0)
		for _, dayTask := range day.Tasks {
			if dayTask.TaskID == task.TaskID && dayTask.Title == task.Title {
				spent = dayTask.Planned + dayTask.Completed
				break
			}
		}
		row = append(row, durationToString(spent))
	}
	return append(row, durationToString(day.TotalTime))
}

func durationToString(duration time.Duration) string {
	seconds := int(duration.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
