// Package entities contains the domain model for the medication API:
// medication master records, user regimen entries, interactions, warnings
// and the generated daily schedule.
package entities

import "time"

// Medication is a master drug record, shared by any number of user
// medications. Created on first lookup (seed, local hit or API fetch) and
// only enriched afterwards.
type Medication struct {
	ID               int64     `json:"id"`
	RxCui            string    `json:"rxcui"`
	Name             string    `json:"name"`
	GenericName      string    `json:"generic_name"`
	ActiveIngredients []string `json:"active_ingredients"`
	Strength         string    `json:"strength"`
	DosageForm       string    `json:"dosage_form"`
	Route            string    `json:"route"`
	IsOTC            bool      `json:"is_otc"`
	MaxDailyDose     float64   `json:"max_daily_dose,omitempty"`
	MaxDailyDoseUnit string    `json:"max_daily_dose_unit,omitempty"`
	Manufacturer     string    `json:"manufacturer,omitempty"`
	NDC              string    `json:"ndc,omitempty"`
	DataSource       string    `json:"data_source"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserMedication is one entry of a user's regimen, referencing a Medication.
// Rows are soft-deleted: Active flips to false and EndDate is set, the row
// is retained for schedule history.
type UserMedication struct {
	ID                  int64              `json:"id"`
	MedicationID        int64              `json:"medication_id"`
	Medication          *Medication        `json:"medication,omitempty"`
	Dose                float64            `json:"dose"`
	DoseUnit            string             `json:"dose_unit"`
	Frequency           int                `json:"frequency"`
	TimingPreferences   []TimingPreference `json:"timing_preferences,omitempty"`
	SpecificTimes       []TimeOfDay        `json:"specific_times,omitempty"`
	WithFood            bool               `json:"with_food"`
	OnEmptyStomach      bool               `json:"on_empty_stomach"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	Active              bool               `json:"active"`
	StartDate           *time.Time         `json:"start_date,omitempty"`
	EndDate             *time.Time         `json:"end_date,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// DailyDose is the total amount taken per day for this entry.
func (um *UserMedication) DailyDose() float64 {
	return um.Dose * float64(um.Frequency)
}

// MedicationName returns the display name of the referenced medication,
// or a placeholder when the join has not been loaded.
func (um *UserMedication) MedicationName() string {
	if um.Medication == nil {
		return "Unknown"
	}
	return um.Medication.Name
}
