// Package schedule turns a regimen into a time-bucketed daily timetable with
// interaction and dosage warnings attached.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/logging"
)

// interactionChecker and dosageValidator are the two warning engines the
// generator fans out to.
type interactionChecker interface {
	CheckAll(ctx context.Context, medications []entities.UserMedication) (*entities.InteractionCheckResult, error)
}

type dosageValidator interface {
	ValidateAll(ctx context.Context, medications []entities.UserMedication) ([]entities.DosageWarning, error)
}

// defaultSlots are the canonical dose times per timing preference.
var defaultSlots = map[entities.TimingPreference]entities.TimeOfDay{
	entities.Morning: entities.TimeOfDayFromHM(8, 0),
	entities.Noon:    entities.TimeOfDayFromHM(12, 0),
	entities.Evening: entities.TimeOfDayFromHM(18, 0),
	entities.Bedtime: entities.TimeOfDayFromHM(22, 0),
}

// Generator builds daily schedules.
type Generator struct {
	interactions interactionChecker
	dosage       dosageValidator
}

func NewGenerator(interactions interactionChecker, dosage dosageValidator) *Generator {
	return &Generator{interactions: interactions, dosage: dosage}
}

// Generate builds the daily schedule for the given regimen entries. The two
// warning engines run concurrently; an engine failure degrades that warning
// list to empty rather than failing the whole schedule.
func (g *Generator) Generate(ctx context.Context, medications []entities.UserMedication) (*entities.DailySchedule, error) {
	logging.Info("Generating schedule", "medications", len(medications))

	schedule := &entities.DailySchedule{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now(),
	}

	var checkResult *entities.InteractionCheckResult
	var dosageWarnings []entities.DosageWarning

	var eg errgroup.Group
	eg.Go(func() error {
		result, err := g.interactions.CheckAll(ctx, medications)
		if err != nil {
			logging.Warn("Interaction check failed during schedule generation", "error", err)
			return nil
		}
		checkResult = result
		return nil
	})
	eg.Go(func() error {
		warnings, err := g.dosage.ValidateAll(ctx, medications)
		if err != nil {
			logging.Warn("Dosage validation failed during schedule generation", "error", err)
			return nil
		}
		dosageWarnings = warnings
		return nil
	})
	eg.Wait()

	if checkResult != nil {
		schedule.Interactions = checkResult.DrugInteractions
		schedule.DuplicationWarnings = checkResult.DuplicateWarnings
		schedule.FoodInteractions = checkResult.FoodInteractions
	}
	schedule.DosageWarnings = dosageWarnings
	schedule.Entries = buildEntries(medications)

	return schedule, nil
}

// buildEntries expands each active entry into timed doses, buckets them into
// 30-minute windows and sorts the resulting entries by time.
func buildEntries(medications []entities.UserMedication) []entities.ScheduleEntry {
	type timedDose struct {
		time entities.TimeOfDay
		dose entities.MedicationDose
	}

	var all []timedDose
	for i := range medications {
		um := &medications[i]
		if !um.Active {
			continue
		}
		for _, t := range determineTimes(um) {
			all = append(all, timedDose{time: t, dose: entities.MedicationDose{
				UserMedication:       um,
				Amount:               um.Dose,
				Unit:                 um.DoseUnit,
				Instructions:         um.SpecialInstructions,
				RequiresFood:         um.WithFood,
				RequiresEmptyStomach: um.OnEmptyStomach,
			}})
		}
	}

	buckets := make(map[int][]entities.MedicationDose)
	for _, td := range all {
		key := (td.time.Minutes / 30) * 30
		buckets[key] = append(buckets[key], td.dose)
	}

	keys := make([]int, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	entries := make([]entities.ScheduleEntry, 0, len(keys))
	for _, key := range keys {
		t := entities.TimeOfDay{Minutes: key}
		doses := buckets[key]
		entries = append(entries, entities.ScheduleEntry{
			Time:                t,
			TimeSlot:            classifySlot(t),
			Doses:               doses,
			GeneralInstructions: buildGeneralInstructions(doses),
		})
	}
	return entries
}

// determineTimes resolves when one entry's doses are taken. Explicit times
// win; otherwise canonical slots by frequency. Frequencies past four space
// evenly from 08:00 across the day; the computed hour may pass 24, a known
// edge case surfaced to the caller rather than wrapped.
func determineTimes(um *entities.UserMedication) []entities.TimeOfDay {
	if len(um.SpecificTimes) > 0 {
		return um.SpecificTimes
	}

	switch um.Frequency {
	case 1:
		if len(um.TimingPreferences) > 0 {
			if slot, ok := defaultSlots[um.TimingPreferences[0]]; ok {
				return []entities.TimeOfDay{slot}
			}
		}
		return []entities.TimeOfDay{defaultSlots[entities.Morning]}
	case 2:
		return []entities.TimeOfDay{defaultSlots[entities.Morning], defaultSlots[entities.Evening]}
	case 3:
		return []entities.TimeOfDay{defaultSlots[entities.Morning], defaultSlots[entities.Noon], defaultSlots[entities.Evening]}
	case 4:
		return []entities.TimeOfDay{defaultSlots[entities.Morning], defaultSlots[entities.Noon], defaultSlots[entities.Evening], defaultSlots[entities.Bedtime]}
	default:
		interval := 24.0 / float64(um.Frequency)
		times := make([]entities.TimeOfDay, 0, um.Frequency)
		for i := 0; i < um.Frequency; i++ {
			hours := 8 + float64(i)*interval
			times = append(times, entities.TimeOfDay{Minutes: int(hours * 60)})
		}
		return times
	}
}

// classifySlot labels a time by its hour band.
func classifySlot(t entities.TimeOfDay) entities.TimingPreference {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 11:
		return entities.Morning
	case hour >= 11 && hour < 14:
		return entities.Noon
	case hour >= 14 && hour < 20:
		return entities.Evening
	default:
		return entities.Bedtime
	}
}

// buildGeneralInstructions summarizes food requirements across one entry's
// doses.
func buildGeneralInstructions(doses []entities.MedicationDose) string {
	withFood := 0
	emptyStomach := 0
	for _, d := range doses {
		if d.RequiresFood {
			withFood++
		}
		if d.RequiresEmptyStomach {
			emptyStomach++
		}
	}

	switch {
	case emptyStomach > 0 && withFood > 0:
		return "Take medications on empty stomach first, then wait 30 minutes before taking with food."
	case withFood > 0:
		return "Take with food or a meal."
	case emptyStomach > 0:
		return "Take on empty stomach (1 hour before or 2 hours after meals)."
	}
	return ""
}
