// Package medications coordinates medication lookup across the local
// database and the external drug APIs, and manages the user's regimen.
package medications

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/externalapi"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
	"github.com/medtrack/medication-api/validation"
)

const maxSearchResults = 20

// medicationStore is the slice of the medication repository the service
// uses beyond the generic contract.
type medicationStore interface {
	interfaces.Repository[entities.Medication]
	GetByRxCui(ctx context.Context, rxCui string) (*entities.Medication, error)
}

// userMedicationStore adds the active-only listing.
type userMedicationStore interface {
	interfaces.Repository[entities.UserMedication]
	GetActive(ctx context.Context) ([]entities.UserMedication, error)
}

// Service implements medication search and regimen CRUD.
type Service struct {
	medications     medicationStore
	userMedications userMedicationStore
	rxNorm          interfaces.RxNormClient
	openFDA         interfaces.OpenFDAClient
}

func NewService(medications medicationStore, userMedications userMedicationStore,
	rxNorm interfaces.RxNormClient, openFDA interfaces.OpenFDAClient) *Service {
	return &Service{
		medications:     medications,
		userMedications: userMedications,
		rxNorm:          rxNorm,
		openFDA:         openFDA,
	}
}

// Search fans the term out to the local database, RxNorm and OpenFDA,
// merges by RxCui/name, scores by relevance and returns the top hits. An
// API failure degrades the result set instead of failing the search.
func (s *Service) Search(ctx context.Context, term string) ([]entities.MedicationSearchResult, error) {
	if err := validation.ValidateSearchTerm(term); err != nil {
		return nil, err
	}

	logging.Info("Searching medications", "term", term)

	results, err := s.searchLocal(ctx, term)
	if err != nil {
		return nil, err
	}

	for _, candidate := range s.searchRxNorm(ctx, term) {
		if !containsRxCui(results, candidate.Medication.RxCui) {
			results = append(results, candidate)
		}
	}

	for _, fdaResult := range s.searchOpenFDA(ctx, term) {
		if existing := findMatch(results, &fdaResult.Medication); existing != nil {
			enrichFromFDA(&existing.Medication, &fdaResult.Medication)
		} else {
			results = append(results, fdaResult)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	logging.Info("Medication search complete", "term", term, "results", len(results))
	return results, nil
}

func (s *Service) searchLocal(ctx context.Context, term string) ([]entities.MedicationSearchResult, error) {
	lower := strings.ToLower(term)
	matches, err := s.medications.Find(ctx, func(m *entities.Medication) bool {
		return strings.Contains(strings.ToLower(m.Name), lower) ||
			strings.Contains(strings.ToLower(m.GenericName), lower)
	})
	if err != nil {
		return nil, fmt.Errorf("search local medications: %w", err)
	}

	results := make([]entities.MedicationSearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, entities.MedicationSearchResult{
			Medication: m,
			Source:     "Local Database",
			Relevance:  relevance(&m, term),
		})
	}
	return results, nil
}

func (s *Service) searchRxNorm(ctx context.Context, term string) []entities.MedicationSearchResult {
	candidates, err := s.rxNorm.SearchApproximate(ctx, term)
	if err != nil {
		logging.Warn("RxNorm search failed", "term", term, "error", err)
		return nil
	}
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}

	now := time.Now()
	var results []entities.MedicationSearchResult
	for _, candidate := range candidates {
		genericName := candidate.Name
		if details, err := s.rxNorm.GetRxCuiProperties(ctx, candidate.RxCui); err == nil && details != nil {
			genericName = details.Name
		}
		ingredients, err := s.rxNorm.GetActiveIngredients(ctx, candidate.RxCui)
		if err != nil {
			logging.Warn("Failed to fetch active ingredients", "rxcui", candidate.RxCui, "error", err)
		}

		results = append(results, entities.MedicationSearchResult{
			Medication: entities.Medication{
				RxCui:             candidate.RxCui,
				Name:              candidate.Name,
				GenericName:       genericName,
				ActiveIngredients: ingredients,
				DataSource:        "RxNorm",
				CreatedAt:         now,
				UpdatedAt:         now,
			},
			Source:    "RxNorm API",
			Relevance: candidate.Score,
		})
	}
	return results
}

func (s *Service) searchOpenFDA(ctx context.Context, term string) []entities.MedicationSearchResult {
	response, err := s.openFDA.SearchDrugs(ctx, term, 5)
	if err != nil {
		logging.Warn("OpenFDA search failed", "term", term, "error", err)
		return nil
	}
	if response == nil {
		return nil
	}

	now := time.Now()
	var results []entities.MedicationSearchResult
	for _, fdaResult := range response.Results {
		m := medicationFromFDA(fdaResult.OpenFDA, now)
		if m == nil {
			continue
		}
		results = append(results, entities.MedicationSearchResult{
			Medication: *m,
			Source:     "OpenFDA API",
			Relevance:  relevance(m, term),
		})
	}
	return results
}

// medicationFromFDA maps a label's harmonized openfda block to a medication
// record, or nil when the label carries no brand name.
func medicationFromFDA(openFDA *externalapi.OpenFDASection, now time.Time) *entities.Medication {
	if openFDA == nil {
		return nil
	}
	brandName := first(openFDA.BrandName)
	if brandName == "" {
		return nil
	}

	return &entities.Medication{
		RxCui:             first(openFDA.RxCui),
		Name:              brandName,
		GenericName:       first(openFDA.GenericName),
		ActiveIngredients: openFDA.SubstanceName,
		Manufacturer:      first(openFDA.ManufacturerName),
		Route:             first(openFDA.Route),
		NDC:               first(openFDA.ProductNDC),
		IsOTC:             isOTCProductType(openFDA.ProductType),
		DataSource:        "OpenFDA",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// GetByRxCui returns the medication for rxCui, fetching from the APIs and
// saving locally on a miss. Returns nil when the code resolves nowhere.
func (s *Service) GetByRxCui(ctx context.Context, rxCui string) (*entities.Medication, error) {
	if err := validation.ValidateRxCui(rxCui); err != nil {
		return nil, err
	}

	local, err := s.medications.GetByRxCui(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}
	return s.fetchAndSave(ctx, rxCui)
}

// GetByID returns a medication row by primary key.
func (s *Service) GetByID(ctx context.Context, id int64) (*entities.Medication, error) {
	return s.medications.GetByID(ctx, id)
}

// fetchAndSave builds a medication from RxNorm details plus best-effort
// OpenFDA enrichment and persists it.
func (s *Service) fetchAndSave(ctx context.Context, rxCui string) (*entities.Medication, error) {
	logging.Info("Fetching medication details", "rxcui", rxCui)

	details, err := s.rxNorm.GetRxCuiProperties(ctx, rxCui)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, nil
	}

	ingredients, err := s.rxNorm.GetActiveIngredients(ctx, rxCui)
	if err != nil {
		logging.Warn("Failed to fetch active ingredients", "rxcui", rxCui, "error", err)
	}

	medication := &entities.Medication{
		RxCui:             rxCui,
		Name:              details.Name,
		GenericName:       details.Name,
		ActiveIngredients: ingredients,
		DataSource:        "RxNorm",
	}

	// Enrichment is best effort; the RxNorm record stands on its own.
	if response, err := s.openFDA.SearchByRxCui(ctx, rxCui); err != nil {
		logging.Warn("Failed to enrich medication from OpenFDA", "rxcui", rxCui, "error", err)
	} else if response != nil && len(response.Results) > 0 {
		if openFDA := response.Results[0].OpenFDA; openFDA != nil {
			if name := first(openFDA.BrandName); name != "" {
				medication.Name = name
			}
			medication.Manufacturer = first(openFDA.ManufacturerName)
			medication.NDC = first(openFDA.ProductNDC)
			medication.Route = first(openFDA.Route)
			medication.IsOTC = isOTCProductType(openFDA.ProductType)
		}
	}

	saved, err := s.medications.Add(ctx, medication)
	if err != nil {
		return nil, err
	}

	logging.Info("Saved new medication", "name", saved.Name, "rxcui", rxCui)
	return saved, nil
}

// AddUserMedication validates the request, resolves the medication (fetching
// it if unknown locally) and creates an active regimen entry.
func (s *Service) AddUserMedication(ctx context.Context, req *entities.AddUserMedicationRequest) (*entities.UserMedication, error) {
	logging.Info("Adding user medication", "rxcui", req.RxCui)

	if req.RxCui == "" {
		return nil, validation.NewValidationError("RxCui is required")
	}
	if err := validation.ValidateDosing(req.Dose, req.Frequency, req.WithFood, req.OnEmptyStomach); err != nil {
		return nil, err
	}
	if err := validation.ValidateTimingPreferences(req.TimingPreferences); err != nil {
		return nil, err
	}

	medication, err := s.GetByRxCui(ctx, req.RxCui)
	if err != nil {
		return nil, err
	}
	if medication == nil {
		return nil, validation.NewNotFoundError("Medication", req.RxCui)
	}

	startDate := req.StartDate
	if startDate == nil {
		now := time.Now()
		startDate = &now
	}

	userMedication := &entities.UserMedication{
		MedicationID:        medication.ID,
		Medication:          medication,
		Dose:                req.Dose,
		DoseUnit:            req.DoseUnit,
		Frequency:           req.Frequency,
		TimingPreferences:   req.TimingPreferences,
		SpecificTimes:       req.SpecificTimes,
		WithFood:            req.WithFood,
		OnEmptyStomach:      req.OnEmptyStomach,
		SpecialInstructions: req.SpecialInstructions,
		Active:              true,
		StartDate:           startDate,
	}

	saved, err := s.userMedications.Add(ctx, userMedication)
	if err != nil {
		return nil, err
	}
	saved.Medication = medication

	logging.Info("Added user medication", "name", medication.Name, "id", saved.ID)
	return saved, nil
}

// UpdateUserMedication validates and applies an edit to an existing entry.
func (s *Service) UpdateUserMedication(ctx context.Context, id int64, req *entities.UpdateUserMedicationRequest) (*entities.UserMedication, error) {
	logging.Info("Updating user medication", "id", id)

	userMedication, err := s.userMedications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userMedication == nil {
		return nil, validation.NewNotFoundError("User medication", id)
	}

	if err := validation.ValidateDosing(req.Dose, req.Frequency, req.WithFood, req.OnEmptyStomach); err != nil {
		return nil, err
	}
	if err := validation.ValidateTimingPreferences(req.TimingPreferences); err != nil {
		return nil, err
	}

	userMedication.Dose = req.Dose
	userMedication.DoseUnit = req.DoseUnit
	userMedication.Frequency = req.Frequency
	userMedication.TimingPreferences = req.TimingPreferences
	userMedication.SpecificTimes = req.SpecificTimes
	userMedication.WithFood = req.WithFood
	userMedication.OnEmptyStomach = req.OnEmptyStomach
	userMedication.SpecialInstructions = req.SpecialInstructions
	userMedication.Active = req.Active

	updated, err := s.userMedications.Update(ctx, userMedication)
	if err != nil {
		return nil, err
	}
	return s.withMedication(ctx, updated)
}

// DeleteUserMedication soft-deletes an entry: the row stays for history with
// Active cleared and EndDate set. Returns false for unknown ids.
func (s *Service) DeleteUserMedication(ctx context.Context, id int64) (bool, error) {
	logging.Info("Deleting user medication", "id", id)

	userMedication, err := s.userMedications.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if userMedication == nil {
		return false, nil
	}

	now := time.Now()
	userMedication.Active = false
	userMedication.EndDate = &now

	if _, err := s.userMedications.Update(ctx, userMedication); err != nil {
		return false, err
	}
	return true, nil
}

// GetActiveUserMedications lists active entries with their medication join
// loaded.
func (s *Service) GetActiveUserMedications(ctx context.Context) ([]entities.UserMedication, error) {
	medications, err := s.userMedications.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadJoins(ctx, medications)
}

// GetAllUserMedications lists every entry, soft-deleted included.
func (s *Service) GetAllUserMedications(ctx context.Context) ([]entities.UserMedication, error) {
	medications, err := s.userMedications.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadJoins(ctx, medications)
}

// GetUserMedicationByID returns one entry with its join loaded, or nil.
func (s *Service) GetUserMedicationByID(ctx context.Context, id int64) (*entities.UserMedication, error) {
	userMedication, err := s.userMedications.GetByID(ctx, id)
	if err != nil || userMedication == nil {
		return nil, err
	}
	return s.withMedication(ctx, userMedication)
}

func (s *Service) loadJoins(ctx context.Context, medications []entities.UserMedication) ([]entities.UserMedication, error) {
	for i := range medications {
		if _, err := s.withMedication(ctx, &medications[i]); err != nil {
			return nil, err
		}
	}
	return medications, nil
}

func (s *Service) withMedication(ctx context.Context, um *entities.UserMedication) (*entities.UserMedication, error) {
	if um.Medication != nil {
		return um, nil
	}
	medication, err := s.medications.GetByID(ctx, um.MedicationID)
	if err != nil {
		return nil, err
	}
	um.Medication = medication
	return um, nil
}

// relevance scores a medication against the search term: exact match 100,
// prefix 80, substring 50, plus small boosts for named and locally stored
// records.
func relevance(m *entities.Medication, term string) int {
	score := 0
	lower := strings.ToLower(term)
	name := strings.ToLower(m.Name)
	genericName := strings.ToLower(m.GenericName)

	switch {
	case name == lower || genericName == lower:
		score += 100
	case strings.HasPrefix(name, lower) || strings.HasPrefix(genericName, lower):
		score += 80
	case strings.Contains(name, lower) || strings.Contains(genericName, lower):
		score += 50
	}

	if m.Name != "" {
		score += 10
	}
	if m.ID > 0 {
		score += 20
	}
	return score
}

// enrichFromFDA fills gaps in target from an OpenFDA-sourced record without
// overwriting data already present.
func enrichFromFDA(target, source *entities.Medication) {
	if target.Manufacturer == "" {
		target.Manufacturer = source.Manufacturer
	}
	if target.NDC == "" {
		target.NDC = source.NDC
	}
	if target.Route == "" {
		target.Route = source.Route
	}
	if len(target.ActiveIngredients) == 0 {
		target.ActiveIngredients = source.ActiveIngredients
	}
	if source.IsOTC {
		target.IsOTC = true
	}
}

func containsRxCui(results []entities.MedicationSearchResult, rxCui string) bool {
	for i := range results {
		if results[i].Medication.RxCui == rxCui {
			return true
		}
	}
	return false
}

func findMatch(results []entities.MedicationSearchResult, m *entities.Medication) *entities.MedicationSearchResult {
	for i := range results {
		if strings.EqualFold(results[i].Medication.Name, m.Name) ||
			(m.RxCui != "" && results[i].Medication.RxCui == m.RxCui) {
			return &results[i]
		}
	}
	return nil
}

func isOTCProductType(productTypes []string) bool {
	for _, pt := range productTypes {
		if strings.Contains(strings.ToUpper(pt), "OTC") {
			return true
		}
	}
	return false
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
