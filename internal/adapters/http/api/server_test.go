package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/infrastructure/persistence/sqlite/repository"
	"agrimaint/internal/usecase/fleet"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fleet.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(
		&model.Equipment{},
		&model.Prediction{},
		&model.Recommendation{},
		&model.ScheduleTask{},
		&model.KPIMetric{},
		&model.PipelineRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewFleetRepository(db)
	return NewServer(fleet.NewService(repo)).Router()
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status = %q, want ok", body["status"])
	}
}

func TestEquipmentCRUDOverHTTP(t *testing.T) {
	handler := setupServer(t)

	created := doJSON(t, handler, http.MethodPost, "/api/v1/equipment", map[string]any{
		"serial":          "AG-7001",
		"equipment_type":  "Tractor",
		"brand":           "Fendt",
		"model":           "724",
		"operating_hours": 150.5,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("POST /equipment = %d, want 201: %s", created.Code, created.Body)
	}

	var createdBody equipmentResponse
	if err := json.Unmarshal(created.Body.Bytes(), &createdBody); err != nil {
		t.Fatalf("decode created equipment: %v", err)
	}
	if createdBody.EquipmentID == 0 {
		t.Fatal("created equipment has no id")
	}
	if createdBody.EquipmentType != "tractor" {
		t.Fatalf("equipment_type = %q, want normalized to tractor", createdBody.EquipmentType)
	}

	idPath := "/api/v1/equipment/" + strconv.FormatUint(createdBody.EquipmentID, 10)

	fetched := doJSON(t, handler, http.MethodGet, idPath, nil)
	if fetched.Code != http.StatusOK {
		t.Fatalf("GET %s = %d, want 200", idPath, fetched.Code)
	}
	var fetchedBody equipmentResponse
	if err := json.Unmarshal(fetched.Body.Bytes(), &fetchedBody); err != nil {
		t.Fatalf("decode fetched equipment: %v", err)
	}
	if fetchedBody != createdBody {
		t.Fatalf("GET returned %+v, want the created record %+v", fetchedBody, createdBody)
	}

	updated := doJSON(t, handler, http.MethodPut, idPath, map[string]any{"operating_hours": 200.0})
	if updated.Code != http.StatusOK {
		t.Fatalf("PUT %s = %d, want 200: %s", idPath, updated.Code, updated.Body)
	}
	var updatedBody equipmentResponse
	if err := json.Unmarshal(updated.Body.Bytes(), &updatedBody); err != nil {
		t.Fatalf("decode updated equipment: %v", err)
	}
	if updatedBody.OperatingHours != 200 {
		t.Fatalf("operating_hours = %v, want 200", updatedBody.OperatingHours)
	}
	if updatedBody.Brand != "Fendt" {
		t.Fatalf("brand = %q, want untouched Fendt", updatedBody.Brand)
	}

	deleted := doJSON(t, handler, http.MethodDelete, idPath, nil)
	if deleted.Code != http.StatusNoContent {
		t.Fatalf("DELETE %s = %d, want 204", idPath, deleted.Code)
	}

	gone := doJSON(t, handler, http.MethodGet, idPath, nil)
	if gone.Code != http.StatusNotFound {
		t.Fatalf("GET after delete = %d, want 404", gone.Code)
	}
}

func TestEquipmentErrorsAsJSON(t *testing.T) {
	handler := setupServer(t)

	notFound := doJSON(t, handler, http.MethodGet, "/api/v1/equipment/999", nil)
	if notFound.Code != http.StatusNotFound {
		t.Fatalf("GET unknown equipment = %d, want 404", notFound.Code)
	}
	var envelope errorResponse
	if err := json.Unmarshal(notFound.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error == "" {
		t.Fatal("error envelope is empty")
	}

	badID := doJSON(t, handler, http.MethodGet, "/api/v1/equipment/abc", nil)
	if badID.Code != http.StatusBadRequest {
		t.Fatalf("GET non-numeric id = %d, want 400", badID.Code)
	}

	badBody := httptest.NewRequest(http.MethodPost, "/api/v1/equipment", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, badBody)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST malformed body = %d, want 400", rec.Code)
	}

	missingType := doJSON(t, handler, http.MethodPost, "/api/v1/equipment", map[string]any{"serial": "AG-1"})
	if missingType.Code != http.StatusBadRequest {
		t.Fatalf("POST without equipment_type = %d, want 400", missingType.Code)
	}
}

func TestLatestViewsWithoutRuns(t *testing.T) {
	handler := setupServer(t)

	for _, target := range []string{
		"/api/v1/predictions/latest",
		"/api/v1/recommendations",
		"/api/v1/schedule",
		"/api/v1/kpi",
		"/api/v1/analytics/summary",
	} {
		rec := doJSON(t, handler, http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s = %d, want 404 before any finished run", target, rec.Code)
		}
	}
}

func TestEquipmentPredictionsLimitValidation(t *testing.T) {
	handler := setupServer(t)

	created := doJSON(t, handler, http.MethodPost, "/api/v1/equipment", map[string]any{"equipment_type": "seeder"})
	if created.Code != http.StatusCreated {
		t.Fatalf("POST /equipment = %d, want 201", created.Code)
	}
	var createdBody equipmentResponse
	if err := json.Unmarshal(created.Body.Bytes(), &createdBody); err != nil {
		t.Fatalf("decode created equipment: %v", err)
	}
	base := "/api/v1/equipment/" + strconv.FormatUint(createdBody.EquipmentID, 10) + "/predictions"

	empty := doJSON(t, handler, http.MethodGet, base, nil)
	if empty.Code != http.StatusOK {
		t.Fatalf("GET %s = %d, want 200", base, empty.Code)
	}

	badLimit := doJSON(t, handler, http.MethodGet, base+"?limit=zero", nil)
	if badLimit.Code != http.StatusBadRequest {
		t.Fatalf("GET with bad limit = %d, want 400", badLimit.Code)
	}
}
