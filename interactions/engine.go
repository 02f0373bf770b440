// Package interactions finds drug-drug interactions and duplicate
// active-ingredient overlaps across a user's regimen.
package interactions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
)

// interactionStore is the slice of the interaction repository the engine
// needs: pair lookup and persistence of newly discovered interactions.
type interactionStore interface {
	GetByPair(ctx context.Context, rxCui1, rxCui2 string) (*entities.DrugInteraction, error)
	Add(ctx context.Context, di *entities.DrugInteraction) (*entities.DrugInteraction, error)
}

var titleCaser = cases.Title(language.English)

// Engine runs the interaction checks. Pair lookups hit the local store
// first and fall back to OpenFDA; discovered interactions are persisted so
// later checks stay local.
type Engine struct {
	store   interactionStore
	openFDA interfaces.OpenFDAClient
}

func NewEngine(store interactionStore, openFDA interfaces.OpenFDAClient) *Engine {
	return &Engine{store: store, openFDA: openFDA}
}

// CheckAll runs the drug-pair and duplicate-ingredient checks over the given
// regimen entries and aggregates the result. Callers filter to active
// entries; this layer checks whatever it is handed.
func (e *Engine) CheckAll(ctx context.Context, medications []entities.UserMedication) (*entities.InteractionCheckResult, error) {
	logging.Info("Checking interactions", "medications", len(medications))

	result := &entities.InteractionCheckResult{
		CheckedAt: time.Now(),
	}
	for i := range medications {
		result.CheckedMedications = append(result.CheckedMedications, medications[i].MedicationName())
	}

	drugInteractions, err := e.CheckDrugPairs(ctx, medications)
	if err != nil {
		return nil, err
	}
	result.DrugInteractions = drugInteractions
	result.DuplicateWarnings = e.CheckDuplicateIngredients(medications)

	logging.Info("Interaction check complete",
		"total_issues", result.TotalIssues(),
		"interactions", len(result.DrugInteractions),
		"duplicates", len(result.DuplicateWarnings))

	return result, nil
}

// CheckDrugPairs checks every unordered pair of medications that carry an
// RxCui. A store error aborts the check; a per-pair API failure is logged
// and skipped so one flaky pair cannot abort the batch.
func (e *Engine) CheckDrugPairs(ctx context.Context, medications []entities.UserMedication) ([]entities.DrugInteraction, error) {
	var withRxCui []*entities.UserMedication
	for i := range medications {
		if medications[i].Medication != nil && medications[i].Medication.RxCui != "" {
			withRxCui = append(withRxCui, &medications[i])
		}
	}

	var interactions []entities.DrugInteraction
	for i := 0; i < len(withRxCui); i++ {
		for j := i + 1; j < len(withRxCui); j++ {
			med1 := withRxCui[i].Medication
			med2 := withRxCui[j].Medication

			local, err := e.store.GetByPair(ctx, med1.RxCui, med2.RxCui)
			if err != nil {
				return nil, fmt.Errorf("look up interaction pair: %w", err)
			}
			if local != nil {
				// Repopulate display names from the current list; stored
				// names may be stale.
				if local.Drug1RxCui == med1.RxCui {
					local.Drug1Name = med1.Name
					local.Drug2Name = med2.Name
				} else {
					local.Drug1Name = med2.Name
					local.Drug2Name = med1.Name
				}
				interactions = append(interactions, *local)
				continue
			}

			discovered := e.fetchFromAPI(ctx, med1, med2)
			if discovered != nil {
				if _, err := e.store.Add(ctx, discovered); err != nil {
					logging.Warn("Failed to persist discovered interaction",
						"drug1", med1.Name, "drug2", med2.Name, "error", err)
				}
				interactions = append(interactions, *discovered)
			}
		}
	}

	return interactions, nil
}

// fetchFromAPI looks up one pair on OpenFDA and returns the first hit
// stamped with both identifiers, or nil when nothing was found or the call
// failed.
func (e *Engine) fetchFromAPI(ctx context.Context, med1, med2 *entities.Medication) *entities.DrugInteraction {
	found, err := e.openFDA.GetDrugInteractionsByNames(ctx, med1.Name, med2.Name)
	if err != nil {
		logging.Warn("Failed to fetch interaction",
			"drug1", med1.Name, "drug2", med2.Name, "error", err)
		return nil
	}
	if len(found) == 0 {
		return nil
	}

	result := found[0]
	result.Drug1RxCui = med1.RxCui
	result.Drug2RxCui = med2.RxCui
	result.Drug1Name = med1.Name
	result.Drug2Name = med2.Name
	return &result
}

// CheckDuplicateIngredients groups entries by normalized active ingredient
// and warns for every ingredient shared by two or more distinct
// medications. Doses are summed without unit conversion; the unit of the
// first entry in the group is reported, a known limitation for mixed-unit
// groups.
func (e *Engine) CheckDuplicateIngredients(medications []entities.UserMedication) []entities.DuplicateActiveIngredientWarning {
	groups := make(map[string][]*entities.UserMedication)
	for i := range medications {
		if medications[i].Medication == nil {
			continue
		}
		for _, ingredient := range medications[i].Medication.ActiveIngredients {
			normalized := strings.ToLower(strings.TrimSpace(ingredient))
			groups[normalized] = append(groups[normalized], &medications[i])
		}
	}

	ingredients := make([]string, 0, len(groups))
	for ingredient := range groups {
		ingredients = append(ingredients, ingredient)
	}
	sort.Strings(ingredients)

	var warnings []entities.DuplicateActiveIngredientWarning
	for _, ingredient := range ingredients {
		members := groups[ingredient]

		var names []string
		seen := make(map[string]bool)
		total := 0.0
		for _, um := range members {
			total += um.DailyDose()
			if name := um.Medication.Name; !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		if len(names) < 2 {
			continue
		}

		display := titleCaser.String(ingredient)
		warnings = append(warnings, entities.DuplicateActiveIngredientWarning{
			ActiveIngredient: display,
			MedicationNames:  names,
			TotalDailyDose:   total,
			Unit:             members[0].DoseUnit,
			Warning: fmt.Sprintf("You are taking %d medications containing %s, totaling %.1f %s per day. Please consult your healthcare provider.",
				len(names), display, total, members[0].DoseUnit),
		})
	}

	return warnings
}
