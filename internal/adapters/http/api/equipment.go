package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/ports"
	"agrimaint/internal/usecase/fleet"
)

type equipmentRequest struct {
	Serial          string  `json:"serial"`
	EquipmentType   string  `json:"equipment_type"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	PurchaseDate    string  `json:"purchase_date"`
	LastServiceDate *string `json:"last_service_date"`
	OperatingHours  float64 `json:"operating_hours"`
}

type equipmentResponse struct {
	EquipmentID     uint64  `json:"equipment_id"`
	Serial          string  `json:"serial"`
	EquipmentType   string  `json:"equipment_type"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	PurchaseDate    string  `json:"purchase_date"`
	LastServiceDate *string `json:"last_service_date"`
	OperatingHours  float64 `json:"operating_hours"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toEquipmentResponse(e ports.Equipment) equipmentResponse {
	return equipmentResponse{
		EquipmentID:     e.EquipmentID,
		Serial:          e.Serial,
		EquipmentType:   e.EquipmentType,
		Brand:           e.Brand,
		Model:           e.Model,
		PurchaseDate:    e.PurchaseDate,
		LastServiceDate: e.LastServiceDate,
		OperatingHours:  e.OperatingHours,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func equipmentIDParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("equipment id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := s.fleet.ListEquipment(r.Context())
	if err != nil {
		logging.Error(r.Context(), "list equipment failed", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	out := make([]equipmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toEquipmentResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	created, err := s.fleet.CreateEquipment(r.Context(), fleet.CreateEquipmentInput{
		Serial:          req.Serial,
		EquipmentType:   req.EquipmentType,
		Brand:           req.Brand,
		Model:           req.Model,
		PurchaseDate:    req.PurchaseDate,
		LastServiceDate: req.LastServiceDate,
		OperatingHours:  req.OperatingHours,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEquipmentResponse(created))
}

func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := equipmentIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, err := s.fleet.GetEquipment(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipmentResponse(item))
}

type equipmentUpdateRequest struct {
	Brand           *string  `json:"brand"`
	Model           *string  `json:"model"`
	LastServiceDate *string  `json:"last_service_date"`
	OperatingHours  *float64 `json:"operating_hours"`
}

func (s *Server) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := equipmentIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req equipmentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	updated, err := s.fleet.UpdateEquipment(r.Context(), fleet.UpdateEquipmentInput{
		EquipmentID:     id,
		Brand:           req.Brand,
		Model:           req.Model,
		LastServiceDate: req.LastServiceDate,
		OperatingHours:  req.OperatingHours,
	})
	if err != nil {
		if errors.Is(err, ports.ErrEquipmentNotFound) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipmentResponse(updated))
}

func (s *Server) handleDeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := equipmentIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.fleet.DeleteEquipment(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	logging.Info(r.Context(), "equipment deleted via api", slog.Uint64("equipment_id", id))
	w.WriteHeader(http.StatusNoContent)
}
