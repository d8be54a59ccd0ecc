package api

import (
	"net/http"
	"strconv"

	"agrimaint/internal/ports"
)

type predictionResponse struct {
	EquipmentID        uint64  `json:"equipment_id"`
	RunID              string  `json:"run_id"`
	FailureProbability float64 `json:"failure_probability"`
	RULDays            float64 `json:"rul_days"`
	AnomalyScore       float64 `json:"anomaly_score"`
	RiskScore          float64 `json:"risk_score"`
	Priority           string  `json:"priority"`
	ModelName          string  `json:"model_name"`
	CreatedAt          string  `json:"created_at"`
}

func toPredictionResponses(predictions []ports.Prediction) []predictionResponse {
	out := make([]predictionResponse, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, predictionResponse{
			EquipmentID:        p.EquipmentID,
			RunID:              p.RunID,
			FailureProbability: p.FailureProbability,
			RULDays:            p.RULDays,
			AnomalyScore:       p.AnomalyScore,
			RiskScore:          p.RiskScore,
			Priority:           p.Priority,
			ModelName:          p.ModelName,
			CreatedAt:          p.CreatedAt,
		})
	}
	return out
}

func (s *Server) handleEquipmentPredictions(w http.ResponseWriter, r *http.Request) {
	id, err := equipmentIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, errLimitParam)
			return
		}
	}

	predictions, err := s.fleet.EquipmentPredictions(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPredictionResponses(predictions))
}

func (s *Server) handleLatestPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.fleet.LatestPredictions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPredictionResponses(predictions))
}

type recommendationResponse struct {
	EquipmentID         uint64  `json:"equipment_id"`
	RunID               string  `json:"run_id"`
	Priority            string  `json:"priority"`
	Action              string  `json:"action"`
	MaintenanceCost     float64 `json:"maintenance_cost"`
	ExpectedFailureCost float64 `json:"expected_failure_cost"`
	NetBenefit          float64 `json:"net_benefit"`
	ShouldMaintain      bool    `json:"should_maintain"`
	CreatedAt           string  `json:"created_at"`
}

func (s *Server) handleLatestRecommendations(w http.ResponseWriter, r *http.Request) {
	recommendations, err := s.fleet.LatestRecommendations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]recommendationResponse, 0, len(recommendations))
	for _, rec := range recommendations {
		out = append(out, recommendationResponse{
			EquipmentID:         rec.EquipmentID,
			RunID:               rec.RunID,
			Priority:            rec.Priority,
			Action:              rec.Action,
			MaintenanceCost:     rec.MaintenanceCost,
			ExpectedFailureCost: rec.ExpectedFailureCost,
			NetBenefit:          rec.NetBenefit,
			ShouldMaintain:      rec.ShouldMaintain,
			CreatedAt:           rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type scheduleTaskResponse struct {
	EquipmentID uint64 `json:"equipment_id"`
	RunID       string `json:"run_id"`
	Priority    string `json:"priority"`
	Action      string `json:"action"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
}

func (s *Server) handleLatestSchedule(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.fleet.LatestSchedule(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]scheduleTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, scheduleTaskResponse{
			EquipmentID: task.EquipmentID,
			RunID:       task.RunID,
			Priority:    task.Priority,
			Action:      task.Action,
			DueDate:     task.DueDate,
			Status:      task.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type kpiResponse struct {
	RunID      string  `json:"run_id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	ComputedAt string  `json:"computed_at"`
}

func (s *Server) handleLatestKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.fleet.LatestKPIs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]kpiResponse, 0, len(kpis))
	for _, kpi := range kpis {
		out = append(out, kpiResponse{RunID: kpi.RunID, Name: kpi.Name, Value: kpi.Value, ComputedAt: kpi.ComputedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.fleet.Analytics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
