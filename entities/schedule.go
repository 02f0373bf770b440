package entities

import "time"

// MedicationDose is one dose inside a schedule entry.
type MedicationDose struct {
	UserMedication      *UserMedication `json:"user_medication"`
	Amount              float64         `json:"amount"`
	Unit                string          `json:"unit"`
	Instructions        string          `json:"instructions,omitempty"`
	RequiresFood        bool            `json:"requires_food"`
	RequiresEmptyStomach bool           `json:"requires_empty_stomach"`
}

// DisplayName is the medication name for presentation.
func (d *MedicationDose) DisplayName() string {
	if d.UserMedication == nil {
		return "Unknown"
	}
	return d.UserMedication.MedicationName()
}

// ScheduleEntry groups doses sharing one 30-minute window.
type ScheduleEntry struct {
	Time                TimeOfDay        `json:"time"`
	TimeSlot            TimingPreference `json:"time_slot"`
	Doses               []MedicationDose `json:"doses"`
	GeneralInstructions string           `json:"general_instructions,omitempty"`
}

// RequiresFood reports whether any dose in the entry must be taken with food.
func (e *ScheduleEntry) RequiresFood() bool {
	for _, d := range e.Doses {
		if d.RequiresFood {
			return true
		}
	}
	return false
}

// RequiresEmptyStomach reports whether any dose must be taken on an empty
// stomach.
func (e *ScheduleEntry) RequiresEmptyStomach() bool {
	for _, d := range e.Doses {
		if d.RequiresEmptyStomach {
			return true
		}
	}
	return false
}

// DailySchedule is the generated daily timetable plus all warnings found
// while generating it. Computed per request, never persisted.
type DailySchedule struct {
	ID                  string                             `json:"id"`
	GeneratedAt         time.Time                          `json:"generated_at"`
	Entries             []ScheduleEntry                    `json:"entries"`
	Interactions        []DrugInteraction                  `json:"interactions"`
	DosageWarnings      []DosageWarning                    `json:"dosage_warnings"`
	DuplicationWarnings []DuplicateActiveIngredientWarning `json:"duplication_warnings"`
	FoodInteractions    []FoodInteraction                  `json:"food_interactions"`
}

// TotalIssues counts warnings across all categories.
func (s *DailySchedule) TotalIssues() int {
	return len(s.Interactions) + len(s.DosageWarnings) +
		len(s.DuplicationWarnings) + len(s.FoodInteractions)
}

// HighSeverityIssues counts Major+ interactions and Warning+ dosage issues.
func (s *DailySchedule) HighSeverityIssues() int {
	n := 0
	for _, i := range s.Interactions {
		if i.Severity >= SeverityMajor {
			n++
		}
	}
	for _, w := range s.DosageWarnings {
		if w.Level >= LevelWarning {
			n++
		}
	}
	for _, f := range s.FoodInteractions {
		if f.Severity >= SeverityMajor {
			n++
		}
	}
	return n
}

// HasWarnings reports whether any issue was found.
func (s *DailySchedule) HasWarnings() bool { return s.TotalIssues() > 0 }

// HasCriticalWarnings reports whether any high-severity issue was found.
func (s *DailySchedule) HasCriticalWarnings() bool { return s.HighSeverityIssues() > 0 }

// TotalMedications is the number of distinct medications scheduled.
func (s *DailySchedule) TotalMedications() int {
	seen := make(map[int64]struct{})
	for _, e := range s.Entries {
		for _, d := range e.Doses {
			if d.UserMedication != nil {
				seen[d.UserMedication.MedicationID] = struct{}{}
			}
		}
	}
	return len(seen)
}
