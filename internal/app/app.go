package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/agenda/internal/config"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, snapshot refresh, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewApplicationWithConfig(cfg)
}

func NewApplicationWithConfig(cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

func (a *Application) Handler() http.Handler {
	return a.router
}

// Run loads the first snapshot, starts the refresh schedule and the HTTP
// server, and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.deps.Snapshot.Refresh(ctx); err != nil {
		log.Warnf("Initial snapshot refresh failed, serving empty calendar: %v", err)
	}
	if a.cfg.Refresh.Enabled {
		if err := a.deps.Snapshot.Start(a.cfg.Refresh.Schedule); err != nil {
			return err
		}
		defer a.deps.Snapshot.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
