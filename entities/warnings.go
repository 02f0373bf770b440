package entities

// WarningLevel grades dosage warnings. Ascending, Danger is highest.
type WarningLevel int

const (
	LevelInfo WarningLevel = iota
	LevelWarning
	LevelDanger
)

func (l WarningLevel) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelDanger:
		return "Danger"
	}
	return "Unknown"
}

// DosageWarning is a per-medication verdict against the OTC limit table.
// Computed per request, never persisted.
type DosageWarning struct {
	MedicationName     string       `json:"medication_name"`
	CurrentDailyDose   float64      `json:"current_daily_dose"`
	MaxRecommendedDose float64      `json:"max_recommended_dose,omitempty"`
	Unit               string       `json:"unit"`
	Warning            string       `json:"warning"`
	Level              WarningLevel `json:"level"`
}

// DuplicateActiveIngredientWarning flags two or more active regimen entries
// sharing one normalized active ingredient. Computed per request, never
// persisted. TotalDailyDose is the raw sum of dose*frequency in the unit of
// the first medication in the group; mixed units are not converted.
type DuplicateActiveIngredientWarning struct {
	ActiveIngredient string   `json:"active_ingredient"`
	MedicationNames  []string `json:"medication_names"`
	TotalDailyDose   float64  `json:"total_daily_dose"`
	Unit             string   `json:"unit"`
	Warning          string   `json:"warning"`
}

// ProductCount is the number of distinct products in the group.
func (w *DuplicateActiveIngredientWarning) ProductCount() int {
	return len(w.MedicationNames)
}

// FoodInteraction is a food or alcohol interaction warning. The rule engine
// for these is not wired yet; the field exists so check results carry a
// stable shape.
type FoodInteraction struct {
	MedicationName string              `json:"medication_name"`
	Item           string              `json:"item"`
	Severity       InteractionSeverity `json:"severity"`
	Description    string              `json:"description"`
}
