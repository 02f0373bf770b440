// Package handlers provides HTTP request handlers for the medication API
// endpoints: medication search and lookup, the user's regimen, interaction
// checks, schedule generation and health reporting.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
	"github.com/medtrack/medication-api/validation"
)

var serverStartTime = time.Now()

// RespondWithJSON writes a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// respondWithServiceError maps domain errors to HTTP codes: validation
// failures to 400, unknown entities to 404, everything else to 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		RespondWithError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	var notFoundErr *validation.NotFoundError
	if errors.As(err, &notFoundErr) {
		RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	logging.Error("Request failed", "error", err)
	RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// medicationService is the regimen and lookup surface the handlers call.
type medicationService interface {
	Search(ctx context.Context, term string) ([]entities.MedicationSearchResult, error)
	GetByRxCui(ctx context.Context, rxCui string) (*entities.Medication, error)
	AddUserMedication(ctx context.Context, req *entities.AddUserMedicationRequest) (*entities.UserMedication, error)
	UpdateUserMedication(ctx context.Context, id int64, req *entities.UpdateUserMedicationRequest) (*entities.UserMedication, error)
	DeleteUserMedication(ctx context.Context, id int64) (bool, error)
	GetActiveUserMedications(ctx context.Context) ([]entities.UserMedication, error)
	GetAllUserMedications(ctx context.Context) ([]entities.UserMedication, error)
}

// interactionChecker runs the interaction analysis over a regimen.
type interactionChecker interface {
	CheckAll(ctx context.Context, medications []entities.UserMedication) (*entities.InteractionCheckResult, error)
}

// scheduleGenerator builds the daily timetable.
type scheduleGenerator interface {
	Generate(ctx context.Context, medications []entities.UserMedication) (*entities.DailySchedule, error)
}

// Handler wires the services behind the HTTP surface.
type Handler struct {
	medications  medicationService
	interactions interactionChecker
	schedules    scheduleGenerator
	monitor      interfaces.HealthMonitor
}

// NewHandler creates a handler with injected dependencies.
func NewHandler(medications medicationService, interactions interactionChecker,
	schedules scheduleGenerator, monitor interfaces.HealthMonitor) *Handler {
	return &Handler{
		medications:  medications,
		interactions: interactions,
		schedules:    schedules,
		monitor:      monitor,
	}
}
