package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

const (
	apiKeyHeader   = "X-API-Key"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

var ErrUnauthorized = errors.New("upstream rejected the api key")
var ErrUnavailable = errors.New("upstream unavailable")

// Client reads and creates schedules on the agenda API.
type Client interface {
	GetSchedules(ctx context.Context) ([]schedule.Event, error)
	GetSchedulesInRange(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error)
	GetTasks(ctx context.Context) ([]schedule.Task, error)
	CreateSchedule(ctx context.Context, s NewSchedule) (schedule.Event, error)
}

// NewSchedule is what event creation sends upstream.
type NewSchedule struct {
	TaskID int
	Start  time.Time
	End    time.Time
	Status schedule.Status
	Notes  string
}

type ClientImpl struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.Upstream) *ClientImpl {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ClientImpl{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.ApiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *ClientImpl) GetSchedules(ctx context.Context) ([]schedule.Event, error) {
	var dtos []scheduleDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/schedules", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}
	return toEvents(dtos)
}

func (c *ClientImpl) GetSchedulesInRange(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error) {
	query := url.Values{}
	query.Set("startDate", from.UTC().Format(time.RFC3339))
	query.Set("endDate", to.UTC().Format(time.RFC3339))

	var dtos []scheduleDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/schedules/date-range?"+query.Encode(), nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to get schedules in range: %w", err)
	}
	return toEvents(dtos)
}

func (c *ClientImpl) GetTasks(ctx context.Context) ([]schedule.Task, error) {
	var dtos []taskDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/tasks", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	tasks := make([]schedule.Task, 0, len(dtos))
	for _, dto := range dtos {
		tasks = append(tasks, dto.toTask())
	}
	return tasks, nil
}

func (c *ClientImpl) CreateSchedule(ctx context.Context, s NewSchedule) (schedule.Event, error) {
	status := s.Status
	if status == "" {
		status = schedule.StatusPlanned
	}
	body := createScheduleDTO{
		TaskID:    s.TaskID,
		StartTime: s.Start.UTC().Format(time.RFC3339),
		EndTime:   s.End.UTC().Format(time.RFC3339),
		Status:    string(status),
	}
	if s.Notes != "" {
		body.Notes = &s.Notes
	}

	var created scheduleDTO
	if err := c.doJSON(ctx, http.MethodPost, "/api/schedules", body, &created); err != nil {
		return schedule.Event{}, fmt.Errorf("failed to create schedule: %w", err)
	}
	return created.toEvent()
}

func (c *ClientImpl) doJSON(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	log.Tracef("upstream %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		log.Debugf("upstream %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
