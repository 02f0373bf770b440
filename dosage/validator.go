// Package dosage validates daily doses of a regimen against static OTC
// daily-limit guidance.
package dosage

import (
	"context"
	"fmt"
	"strings"

	"github.com/medtrack/medication-api/entities"
)

// otcLimit is one over-the-counter ingredient's daily ceiling.
type otcLimit struct {
	IngredientName string
	MaxDailyDose   float64
	Unit           string
	WarningMessage string
}

// Validator checks regimen entries against per-ingredient OTC limits.
type Validator struct {
	limits map[string]otcLimit
}

func NewValidator() *Validator {
	return &Validator{limits: map[string]otcLimit{
		"acetaminophen": {IngredientName: "Acetaminophen", MaxDailyDose: 4000, Unit: "mg", WarningMessage: "Exceeding this may cause liver damage."},
		"ibuprofen":     {IngredientName: "Ibuprofen", MaxDailyDose: 1200, Unit: "mg", WarningMessage: "May increase risk of stomach bleeding."},
		"naproxen":      {IngredientName: "Naproxen", MaxDailyDose: 660, Unit: "mg", WarningMessage: "May increase risk of stomach bleeding."},
		"aspirin":       {IngredientName: "Aspirin", MaxDailyDose: 4000, Unit: "mg", WarningMessage: "High doses may cause stomach bleeding."},
	}}
}

// ValidateAll checks every active entry and collects the non-nil warnings.
func (v *Validator) ValidateAll(ctx context.Context, medications []entities.UserMedication) ([]entities.DosageWarning, error) {
	var warnings []entities.DosageWarning
	for i := range medications {
		if !medications[i].Active {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if w := v.ValidateOne(&medications[i]); w != nil {
			warnings = append(warnings, *w)
		}
	}
	return warnings, nil
}

// ValidateOne checks a single entry. Prescription medications always get an
// Info-level notice. OTC medications are checked ingredient by ingredient in
// list order and the first ingredient with a limit verdict wins; a
// medication with two offending ingredients reports the first only.
func (v *Validator) ValidateOne(um *entities.UserMedication) *entities.DosageWarning {
	if um.Medication == nil || !um.Medication.IsOTC {
		return &entities.DosageWarning{
			MedicationName:   um.MedicationName(),
			CurrentDailyDose: um.DailyDose(),
			Unit:             um.DoseUnit,
			Warning:          "This is a prescription medication. Please ensure dosage matches your prescription.",
			Level:            entities.LevelInfo,
		}
	}

	for _, ingredient := range um.Medication.ActiveIngredients {
		limit, ok := v.limits[strings.ToLower(strings.TrimSpace(ingredient))]
		if !ok {
			continue
		}

		converted := convertUnit(um.DailyDose(), um.DoseUnit, limit.Unit)
		switch {
		case converted > limit.MaxDailyDose:
			return &entities.DosageWarning{
				MedicationName:     um.Medication.Name,
				CurrentDailyDose:   converted,
				MaxRecommendedDose: limit.MaxDailyDose,
				Unit:               limit.Unit,
				Warning: fmt.Sprintf("Daily dose of %.1f %s exceeds maximum of %.0f %s. %s",
					converted, limit.Unit, limit.MaxDailyDose, limit.Unit, limit.WarningMessage),
				Level: entities.LevelDanger,
			}
		case converted > limit.MaxDailyDose*0.8:
			return &entities.DosageWarning{
				MedicationName:     um.Medication.Name,
				CurrentDailyDose:   converted,
				MaxRecommendedDose: limit.MaxDailyDose,
				Unit:               limit.Unit,
				Warning: fmt.Sprintf("Daily dose of %.1f %s is approaching maximum of %.0f %s.",
					converted, limit.Unit, limit.MaxDailyDose, limit.Unit),
				Level: entities.LevelWarning,
			}
		}
	}

	return nil
}

var unitConversions = map[[2]string]float64{
	{"g", "mg"}:   1000,
	{"mg", "g"}:   0.001,
	{"mg", "mcg"}: 1000,
	{"mcg", "mg"}: 0.001,
}

// convertUnit converts amount between mass units using the fixed table.
// Pairs outside the table (a dose in "tablet" against an "mg" limit) pass
// through unconverted; this is a known approximation, not a general unit
// system.
func convertUnit(amount float64, fromUnit, toUnit string) float64 {
	from := strings.ToLower(fromUnit)
	to := strings.ToLower(toUnit)
	if from == to {
		return amount
	}
	if factor, ok := unitConversions[[2]string{from, to}]; ok {
		return amount * factor
	}
	return amount
}
