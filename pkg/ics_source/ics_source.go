package ics_source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/klokku/agenda/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyCalendar = errors.New("empty ICS payload")

const propertyColor = ical.ComponentProperty("COLOR")

// FileSource serves events from a local .ics file. The file is re-read on
// every call so edits show up on the next refresh.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) GetSchedules(ctx context.Context) ([]schedule.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file %s: %w", s.path, err)
	}
	return Parse(bytes.NewReader(body))
}

// GetTasks returns no tasks; an ICS file carries events only.
func (s *FileSource) GetTasks(ctx context.Context) ([]schedule.Task, error) {
	return []schedule.Task{}, nil
}

// Parse converts every VEVENT of an iCalendar payload into an Event. Events
// whose start cannot be read are skipped. RRULE is not expanded; only the
// first occurrence is returned.
func Parse(r io.Reader) ([]schedule.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyCalendar
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		log.Errorf("Failed to parse calendar: %v", err)
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	events := make([]schedule.Event, 0)
	for _, ve := range cal.Events() {
		event, err := toEvent(ve)
		if err != nil {
			log.Warnf("Skipping calendar event: %v", err)
			continue
		}
		events = append(events, event)
	}
	log.Debugf("Parsed %d calendar events", len(events))
	return events, nil
}

func toEvent(ve *ical.VEvent) (schedule.Event, error) {
	var event schedule.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		event.ID = p.Value
	} else {
		event.ID = uuid.NewString()
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return event, fmt.Errorf("event %s: invalid DTSTART: %w", event.ID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// no DTEND, treat as an instant
		end = start
	}
	event.Start = start.UTC()
	event.End = end.UTC()

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		event.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		event.Description = p.Value
	}
	if p := ve.GetProperty(propertyColor); p != nil {
		event.Color = p.Value
	}

	event.Status = schedule.StatusPlanned
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "COMPLETED") {
		event.Status = schedule.StatusCompleted
	}
	return event, nil
}
