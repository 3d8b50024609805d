package app

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const RequestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Reuse the caller's request id or assign a new one
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get(RequestIdHeader)
			if requestId == "" {
				requestId = uuid.NewString()
				req.Header.Set(RequestIdHeader, requestId)
			}
			w.Header().Set(RequestIdHeader, requestId)
			next.ServeHTTP(w, req)
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			log.WithFields(log.Fields{
				"requestId": req.Header.Get(RequestIdHeader),
				"method":    req.Method,
				"path":      req.URL.Path,
				"status":    rec.status,
				"duration":  time.Since(started).String(),
			}).Debug("Handled request")
		})
	})
}
