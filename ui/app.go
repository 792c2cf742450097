package ui

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"decorana/app"
)

// App represents the HTTP API application
type App struct {
	router  *chi.Mux
	service *app.OrdinationService
}

// Config holds HTTP application configuration
type Config struct {
	Port string
}

// NewApp creates a new API application
func NewApp(service *app.OrdinationService) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the API routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)
	a.router.Route("/api/v1/ordinations", func(r chi.Router) {
		r.Post("/", a.handleCreateOrdination)
		r.Get("/", a.handleListOrdinations)
		r.Get("/{id}", a.handleGetOrdination)
	})
}

// Router exposes the configured router, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP server on the configured port
func (a *App) Serve(cfg Config) error {
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("[API] Listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
