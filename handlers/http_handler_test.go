package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/validation"
)

type mockMedicationService struct {
	searchResults []entities.MedicationSearchResult
	searchErr     error
	medication    *entities.Medication
	getErr        error
	active        []entities.UserMedication
	all           []entities.UserMedication
	listErr       error
	created       *entities.UserMedication
	addErr        error
	updated       *entities.UserMedication
	updateErr     error
	deleted       bool
	deleteErr     error
}

func (m *mockMedicationService) Search(ctx context.Context, term string) ([]entities.MedicationSearchResult, error) {
	return m.searchResults, m.searchErr
}

func (m *mockMedicationService) GetByRxCui(ctx context.Context, rxCui string) (*entities.Medication, error) {
	return m.medication, m.getErr
}

func (m *mockMedicationService) AddUserMedication(ctx context.Context, req *entities.AddUserMedicationRequest) (*entities.UserMedication, error) {
	return m.created, m.addErr
}

func (m *mockMedicationService) UpdateUserMedication(ctx context.Context, id int64, req *entities.UpdateUserMedicationRequest) (*entities.UserMedication, error) {
	return m.updated, m.updateErr
}

func (m *mockMedicationService) DeleteUserMedication(ctx context.Context, id int64) (bool, error) {
	return m.deleted, m.deleteErr
}

func (m *mockMedicationService) GetActiveUserMedications(ctx context.Context) ([]entities.UserMedication, error) {
	return m.active, m.listErr
}

func (m *mockMedicationService) GetAllUserMedications(ctx context.Context) ([]entities.UserMedication, error) {
	return m.all, m.listErr
}

type mockChecker struct {
	result *entities.InteractionCheckResult
	err    error
}

func (m *mockChecker) CheckAll(ctx context.Context, medications []entities.UserMedication) (*entities.InteractionCheckResult, error) {
	return m.result, m.err
}

type mockGenerator struct {
	schedule *entities.DailySchedule
	err      error
}

func (m *mockGenerator) Generate(ctx context.Context, medications []entities.UserMedication) (*entities.DailySchedule, error) {
	return m.schedule, m.err
}

type mockMonitor struct {
	healthy  bool
	statuses map[string]interfaces.ApiHealthStatus
}

func (m *mockMonitor) CheckAll(ctx context.Context) map[string]interfaces.ApiHealthStatus {
	return m.statuses
}

func (m *mockMonitor) Status(apiName string) interfaces.ApiHealthStatus {
	return m.statuses[apiName]
}

func (m *mockMonitor) AllHealthy() bool { return m.healthy }

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/medications/search/{term}", h.SearchMedications)
	r.Get("/medications/{rxcui}", h.GetMedication)
	r.Get("/user-medications", h.ListUserMedications)
	r.Post("/user-medications", h.AddUserMedication)
	r.Put("/user-medications/{id}", h.UpdateUserMedication)
	r.Delete("/user-medications/{id}", h.DeleteUserMedication)
	r.Get("/interactions/check", h.CheckInteractions)
	r.Get("/schedule", h.GetSchedule)
	r.Get("/health", h.HealthCheck)
	r.Get("/health/apis", h.APIHealth)
	return r
}

func TestSearchMedicationsReturnsResults(t *testing.T) {
	svc := &mockMedicationService{
		searchResults: []entities.MedicationSearchResult{
			{Medication: entities.Medication{RxCui: "161", Name: "Tylenol"}, Source: "Local", Relevance: 100},
		},
	}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{healthy: true})

	req := httptest.NewRequest(http.MethodGet, "/medications/search/tylenol", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var results []entities.MedicationSearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(results) != 1 || results[0].Medication.RxCui != "161" {
		t.Errorf("Unexpected results: %+v", results)
	}
}

func TestSearchMedicationsEmptyIsJSONArray(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/medications/search/nosuchdrug", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]" {
		t.Errorf("Expected empty array, got %q", body)
	}
}

func TestSearchMedicationsValidationError(t *testing.T) {
	svc := &mockMedicationService{searchErr: validation.NewValidationError("search term contains invalid characters")}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/medications/search/bad", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestSearchMedicationsUnknownErrorIs500(t *testing.T) {
	svc := &mockMedicationService{searchErr: errors.New("database locked")}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/medications/search/tylenol", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] == "database locked" {
		t.Error("Expected internal error details hidden from the response")
	}
}

func TestGetMedicationNotFound(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/medications/999999", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestListUserMedicationsIncludeInactive(t *testing.T) {
	svc := &mockMedicationService{
		active: []entities.UserMedication{{ID: 1, Active: true}},
		all:    []entities.UserMedication{{ID: 1, Active: true}, {ID: 2, Active: false}},
	}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{})
	router := newTestRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user-medications", nil))
	var medications []entities.UserMedication
	json.Unmarshal(rec.Body.Bytes(), &medications)
	if len(medications) != 1 {
		t.Errorf("Expected 1 active entry, got %d", len(medications))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user-medications?include_inactive=true", nil))
	json.Unmarshal(rec.Body.Bytes(), &medications)
	if len(medications) != 2 {
		t.Errorf("Expected 2 entries with history, got %d", len(medications))
	}
}

func TestAddUserMedicationCreated(t *testing.T) {
	svc := &mockMedicationService{created: &entities.UserMedication{ID: 7, MedicationID: 1, Active: true}}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	payload, _ := json.Marshal(entities.AddUserMedicationRequest{RxCui: "161", Dose: 500, DoseUnit: "mg", Frequency: 2})
	req := httptest.NewRequest(http.MethodPost, "/user-medications", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var created entities.UserMedication
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != 7 {
		t.Errorf("Expected created entry echoed, got %+v", created)
	}
}

func TestAddUserMedicationMalformedBody(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodPost, "/user-medications", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAddUserMedicationUnknownRxCui(t *testing.T) {
	svc := &mockMedicationService{addErr: validation.NewNotFoundError("Medication", "999")}
	h := NewHandler(svc, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	payload, _ := json.Marshal(entities.AddUserMedicationRequest{RxCui: "999", Dose: 500, DoseUnit: "mg", Frequency: 2})
	req := httptest.NewRequest(http.MethodPost, "/user-medications", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestUpdateUserMedicationBadID(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodPut, "/user-medications/abc", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestDeleteUserMedicationNotFound(t *testing.T) {
	h := NewHandler(&mockMedicationService{deleted: false}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodDelete, "/user-medications/42", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDeleteUserMedicationSuccess(t *testing.T) {
	h := NewHandler(&mockMedicationService{deleted: true}, &mockChecker{}, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodDelete, "/user-medications/42", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body["deleted"] {
		t.Errorf("Expected deleted flag, got %v", body)
	}
}

func TestCheckInteractionsUsesActiveRegimen(t *testing.T) {
	checker := &mockChecker{result: &entities.InteractionCheckResult{
		DrugInteractions: []entities.DrugInteraction{{Drug1Name: "Tylenol", Drug2Name: "Advil"}},
	}}
	svc := &mockMedicationService{active: []entities.UserMedication{{ID: 1, Active: true}}}
	h := NewHandler(svc, checker, &mockGenerator{}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/interactions/check", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var result entities.InteractionCheckResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.TotalIssues() != 1 {
		t.Errorf("Expected check result echoed, got %+v", result)
	}
}

func TestGetScheduleGeneratorError(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{},
		&mockGenerator{err: errors.New("boom")}, &mockMonitor{})

	req := httptest.NewRequest(http.MethodGet, "/schedule", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, &mockMonitor{healthy: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 even when degraded, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "degraded" {
		t.Errorf("Expected degraded status, got %v", body["status"])
	}
}

func TestAPIHealthSnapshot(t *testing.T) {
	monitor := &mockMonitor{statuses: map[string]interfaces.ApiHealthStatus{
		"RxNorm":  {ApiName: "RxNorm", Healthy: true},
		"OpenFDA": {ApiName: "OpenFDA", Healthy: false, LastError: "timeout"},
	}}
	h := NewHandler(&mockMedicationService{}, &mockChecker{}, &mockGenerator{}, monitor)

	req := httptest.NewRequest(http.MethodGet, "/health/apis", nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var statuses map[string]interfaces.ApiHealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(statuses) != 2 || statuses["OpenFDA"].Healthy {
		t.Errorf("Unexpected statuses: %+v", statuses)
	}
}
