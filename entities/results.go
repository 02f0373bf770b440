package entities

import "time"

// InteractionCheckResult aggregates everything found by one interaction
// check over a medication list.
type InteractionCheckResult struct {
	ID                 string                             `json:"id"`
	CheckedAt          time.Time                          `json:"checked_at"`
	CheckedMedications []string                           `json:"checked_medications"`
	DrugInteractions   []DrugInteraction                  `json:"drug_interactions"`
	DuplicateWarnings  []DuplicateActiveIngredientWarning `json:"duplicate_warnings"`
	FoodInteractions   []FoodInteraction                  `json:"food_interactions"`
	DosageWarnings     []DosageWarning                    `json:"dosage_warnings"`
}

// TotalIssues counts issues across all categories.
func (r *InteractionCheckResult) TotalIssues() int {
	return len(r.DrugInteractions) + len(r.DuplicateWarnings) +
		len(r.FoodInteractions) + len(r.DosageWarnings)
}

// HighSeverityIssues counts Major+ interactions and Warning+ dosage issues.
func (r *InteractionCheckResult) HighSeverityIssues() int {
	n := 0
	for _, di := range r.DrugInteractions {
		if di.Severity >= SeverityMajor {
			n++
		}
	}
	for _, fi := range r.FoodInteractions {
		if fi.Severity >= SeverityMajor {
			n++
		}
	}
	for _, dw := range r.DosageWarnings {
		if dw.Level >= LevelWarning {
			n++
		}
	}
	return n
}

// HasIssues reports whether anything was found.
func (r *InteractionCheckResult) HasIssues() bool { return r.TotalIssues() > 0 }

// HasCriticalIssues reports whether any high-severity issue was found.
func (r *InteractionCheckResult) HasCriticalIssues() bool { return r.HighSeverityIssues() > 0 }

// MedicationSearchResult is one hit from the combined local and API search.
type MedicationSearchResult struct {
	Medication Medication `json:"medication"`
	Source     string     `json:"source"`
	Relevance  int        `json:"relevance"`
}

// AddUserMedicationRequest carries user input for a new regimen entry.
type AddUserMedicationRequest struct {
	RxCui               string             `json:"rxcui"`
	Dose                float64            `json:"dose"`
	DoseUnit            string             `json:"dose_unit"`
	Frequency           int                `json:"frequency"`
	TimingPreferences   []TimingPreference `json:"timing_preferences,omitempty"`
	SpecificTimes       []TimeOfDay        `json:"specific_times,omitempty"`
	WithFood            bool               `json:"with_food"`
	OnEmptyStomach      bool               `json:"on_empty_stomach"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	StartDate           *time.Time         `json:"start_date,omitempty"`
}

// UpdateUserMedicationRequest carries user input for editing an entry.
type UpdateUserMedicationRequest struct {
	Dose                float64            `json:"dose"`
	DoseUnit            string             `json:"dose_unit"`
	Frequency           int                `json:"frequency"`
	TimingPreferences   []TimingPreference `json:"timing_preferences,omitempty"`
	SpecificTimes       []TimeOfDay        `json:"specific_times,omitempty"`
	WithFood            bool               `json:"with_food"`
	OnEmptyStomach      bool               `json:"on_empty_stomach"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	Active              bool               `json:"active"`
}

// AppSetting is a persisted key/value application setting.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
