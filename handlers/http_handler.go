package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medtrack/medication-api/entities"
)

// SearchMedications handles GET /medications/search/{term}.
func (h *Handler) SearchMedications(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")

	results, err := h.medications.Search(r.Context(), term)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if results == nil {
		results = []entities.MedicationSearchResult{}
	}
	RespondWithJSON(w, http.StatusOK, results)
}

// GetMedication handles GET /medications/{rxcui}.
func (h *Handler) GetMedication(w http.ResponseWriter, r *http.Request) {
	rxCui := chi.URLParam(r, "rxcui")

	medication, err := h.medications.GetByRxCui(r.Context(), rxCui)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if medication == nil {
		RespondWithError(w, http.StatusNotFound, "Medication not found: "+rxCui)
		return
	}
	RespondWithJSON(w, http.StatusOK, medication)
}

// ListUserMedications handles GET /user-medications. Active entries only by
// default; ?include_inactive=true returns the full history.
func (h *Handler) ListUserMedications(w http.ResponseWriter, r *http.Request) {
	var medications []entities.UserMedication
	var err error

	if r.URL.Query().Get("include_inactive") == "true" {
		medications, err = h.medications.GetAllUserMedications(r.Context())
	} else {
		medications, err = h.medications.GetActiveUserMedications(r.Context())
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if medications == nil {
		medications = []entities.UserMedication{}
	}
	RespondWithJSON(w, http.StatusOK, medications)
}

// AddUserMedication handles POST /user-medications.
func (h *Handler) AddUserMedication(w http.ResponseWriter, r *http.Request) {
	var req entities.AddUserMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.medications.AddUserMedication(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, created)
}

// UpdateUserMedication handles PUT /user-medications/{id}.
func (h *Handler) UpdateUserMedication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user medication id")
		return
	}

	var req entities.UpdateUserMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.medications.UpdateUserMedication(r.Context(), id, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteUserMedication handles DELETE /user-medications/{id}. The entry is
// soft-deleted and stays available under include_inactive.
func (h *Handler) DeleteUserMedication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user medication id")
		return
	}

	deleted, err := h.medications.DeleteUserMedication(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !deleted {
		RespondWithError(w, http.StatusNotFound, "User medication not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// CheckInteractions handles GET /interactions/check over the active regimen.
func (h *Handler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	medications, err := h.medications.GetActiveUserMedications(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	result, err := h.interactions.CheckAll(r.Context(), medications)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

// GetSchedule handles GET /schedule over the active regimen.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	medications, err := h.medications.GetActiveUserMedications(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	schedule, err := h.schedules.Generate(r.Context(), medications)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, schedule)
}

// HealthCheck handles GET /health: basic liveness plus external API state.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	if !h.monitor.AllHealthy() {
		status = "degraded"
	}

	RespondWithJSON(w, httpStatus, map[string]interface{}{
		"status":         status,
		"uptime_seconds": time.Since(serverStartTime).Seconds(),
		"apis_healthy":   h.monitor.AllHealthy(),
	})
}

// APIHealth handles GET /health/apis: the per-API monitor snapshot.
func (h *Handler) APIHealth(w http.ResponseWriter, r *http.Request) {
	statuses := h.monitor.CheckAll(r.Context())
	RespondWithJSON(w, http.StatusOK, statuses)
}
