// Package api exposes the fleet tables over a JSON REST surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrimaint/internal/ports"
	"agrimaint/internal/usecase/fleet"
)

// Server wires the REST routes onto the fleet service.
type Server struct {
	fleet *fleet.Service
}

func NewServer(fleetService *fleet.Service) *Server {
	return &Server{fleet: fleetService}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", s.handleListEquipment)
			r.Post("/", s.handleCreateEquipment)
			r.Get("/{id}", s.handleGetEquipment)
			r.Put("/{id}", s.handleUpdateEquipment)
			r.Delete("/{id}", s.handleDeleteEquipment)
			r.Get("/{id}/predictions", s.handleEquipmentPredictions)
		})
		r.Get("/predictions/latest", s.handleLatestPredictions)
		r.Get("/recommendations", s.handleLatestRecommendations)
		r.Get("/schedule", s.handleLatestSchedule)
		r.Get("/kpi", s.handleLatestKPIs)
		r.Get("/analytics/summary", s.handleAnalytics)
	})

	return r
}

var errLimitParam = errors.New("limit must be a positive integer")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps repository sentinels to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrEquipmentNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ports.ErrPipelineRunNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
