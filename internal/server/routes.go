// Package server is a small controller API used for development and tests.
// It stores macros and machine profiles in sqlite and pushes machine list
// changes to websocket clients.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jask/cncdeck/internal/database/repository"
)

// Options configure the router.
type Options struct {
	// Token, when set, is required as a bearer token on every request.
	Token string
	// Quiet disables request logging.
	Quiet bool
}

type handler struct {
	macros   *repository.MacroRepo
	machines *repository.MachineRepo
	hub      *Hub
	runs     *RunLog
}

// RegisterRoutes builds the API router.
func RegisterRoutes(macros *repository.MacroRepo, machines *repository.MachineRepo, hub *Hub, runs *RunLog, opts Options) http.Handler {
	r := chi.NewRouter()
	if !opts.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if opts.Token != "" {
		r.Use(requireToken(opts.Token))
	}

	h := &handler{macros: macros, machines: machines, hub: hub, runs: runs}

	r.Get("/api/macros", h.listMacros)
	r.Post("/api/macros", h.createMacro)
	r.Get("/api/macros/{id}", h.getMacro)
	r.Put("/api/macros/{id}", h.updateMacro)
	r.Delete("/api/macros/{id}", h.deleteMacro)
	r.Post("/api/macros/{id}/run", h.runMacro)

	r.Get("/api/machines", h.listMachines)
	r.Post("/api/machines", h.upsertMachine)
	r.Delete("/api/machines/{id}", h.deleteMachine)

	r.Get("/api/events", h.handleEvents)

	return r
}

func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type records[T any] struct {
	Records []T `json:"records"`
}
