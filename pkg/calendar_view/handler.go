package calendar_view

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/time_grid"
	"github.com/klokku/agenda/pkg/timezone"
	"github.com/klokku/agenda/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

// TimezoneHeader lets a client view the grid in another zone than the
// configured one.
const TimezoneHeader = "X-Timezone"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	tz, ok := h.requestZone(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	days := 0
	if daysString := r.URL.Query().Get("days"); daysString != "" {
		var err error
		days, err = strconv.Atoi(daysString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid days", "'days' must be a number between 1 and 31")
			return
		}
	}

	week, err := h.service.Week(date, days, tz)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekToDTO(week))
}

func (h *Handler) GetPointer(w http.ResponseWriter, r *http.Request) {
	tz, ok := h.requestZone(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid y", "'y' must be a fraction of the column height")
		return
	}

	pointer, err := h.service.Pointer(date, y, tz)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PointerDTO{Time: pointer.Time.String(), Instant: pointer.Instant})
}

func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	tz, ok := h.requestZone(w, r)
	if !ok {
		return
	}
	var req SlotRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Date.Year == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Missing date", "'date' must be in YYYY-MM-DD format")
		return
	}
	if req.TaskID <= 0 {
		rest.WriteError(w, http.StatusBadRequest, "Missing taskId", "")
		return
	}

	created, err := h.service.CreateSlot(r.Context(), req.Date, req.Y, req.TaskID, req.Notes, tz)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(created))
}

func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	tz, ok := h.requestZone(w, r)
	if !ok {
		return
	}
	rest.WriteJSON(w, http.StatusOK, BucketsToDTO(h.service.Upcoming(tz)))
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	health := HealthDTO{
		Status:       "ok",
		RefreshCount: status.RefreshCount,
		LastError:    status.LastError,
	}
	if !status.LastRefresh.IsZero() {
		health.LastRefresh = &status.LastRefresh
	}
	if status.RefreshCount == 0 {
		health.Status = "starting"
	} else if status.LastError != "" {
		health.Status = "degraded"
	}
	rest.WriteJSON(w, http.StatusOK, health)
}

// requestZone returns nil when the request does not override the zone.
func (h *Handler) requestZone(w http.ResponseWriter, r *http.Request) (*timezone.Normalizer, bool) {
	name := r.Header.Get(TimezoneHeader)
	if name == "" {
		return nil, true
	}
	tz, err := timezone.NewNormalizer(name)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid timezone", err.Error())
		return nil, false
	}
	return tz, true
}

func dateParam(w http.ResponseWriter, r *http.Request) (timezone.Date, bool) {
	date, err := timezone.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", "'date' must be in YYYY-MM-DD format")
		return timezone.Date{}, false
	}
	return date, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDays), errors.Is(err, time_grid.ErrColumnOutOfRange):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, time_grid.ErrOutOfRangeConfig):
		rest.WriteError(w, http.StatusInternalServerError, "Grid misconfigured", err.Error())
	case errors.Is(err, ErrReadOnly):
		rest.WriteError(w, http.StatusNotImplemented, "Events cannot be created", err.Error())
	case errors.Is(err, upstream.ErrUnauthorized), errors.Is(err, upstream.ErrUnavailable):
		log.Errorf("Upstream request failed: %v", err)
		rest.WriteError(w, http.StatusBadGateway, "Upstream request failed", err.Error())
	default:
		log.Errorf("Request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
