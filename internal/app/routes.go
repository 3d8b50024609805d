package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendar grid
	r.HandleFunc("/api/calendar/layout", deps.CalendarViewHandler.GetLayout).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/calendar/pointer", deps.CalendarViewHandler.GetPointer).Queries("date", "{date}", "y", "{y}").Methods("GET")
	r.HandleFunc("/api/calendar/slot", deps.CalendarViewHandler.CreateSlot).Methods("POST")

	// Schedule list
	r.HandleFunc("/api/schedule/upcoming", deps.CalendarViewHandler.GetUpcoming).Methods("GET")

	// Stats
	r.HandleFunc("/api/stats/weekly", deps.StatsHandler.GetStats).Methods("GET")

	r.HandleFunc("/api/health", deps.CalendarViewHandler.GetHealth).Methods("GET")
}
