// Package seed loads the starter data set into an empty database.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
)

// Seeder populates reference medications and known interactions. Seeding is
// idempotent: a database that already holds medications is left untouched.
type Seeder struct {
	medications  interfaces.Repository[entities.Medication]
	interactions interfaces.Repository[entities.DrugInteraction]
}

func NewSeeder(medications interfaces.Repository[entities.Medication],
	interactions interfaces.Repository[entities.DrugInteraction]) *Seeder {
	return &Seeder{medications: medications, interactions: interactions}
}

// Run seeds the database unless it already holds medications.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.medications.Count(ctx)
	if err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		logging.Info("Database already seeded, skipping")
		return nil
	}

	logging.Info("Seeding initial data")

	if err := s.seedMedications(ctx); err != nil {
		return err
	}
	if err := s.seedInteractions(ctx); err != nil {
		return err
	}

	logging.Info("Initial data seeded successfully")
	return nil
}

func (s *Seeder) seedMedications(ctx context.Context) error {
	medications := []entities.Medication{
		{RxCui: "161", Name: "Tylenol", GenericName: "Acetaminophen", ActiveIngredients: []string{"Acetaminophen"}, Strength: "500mg", DosageForm: "tablet", IsOTC: true, MaxDailyDose: 4000, MaxDailyDoseUnit: "mg", DataSource: "Seed"},
		{RxCui: "5640", Name: "Advil", GenericName: "Ibuprofen", ActiveIngredients: []string{"Ibuprofen"}, Strength: "200mg", DosageForm: "tablet", IsOTC: true, MaxDailyDose: 1200, MaxDailyDoseUnit: "mg", DataSource: "Seed"},
		{RxCui: "1049502", Name: "Claritin", GenericName: "Loratadine", ActiveIngredients: []string{"Loratadine"}, Strength: "10mg", DosageForm: "tablet", IsOTC: true, MaxDailyDose: 10, MaxDailyDoseUnit: "mg", DataSource: "Seed"},
	}

	for i := range medications {
		if _, err := s.medications.Add(ctx, &medications[i]); err != nil {
			return fmt.Errorf("seed medication %s: %w", medications[i].Name, err)
		}
	}

	logging.Info("Seeded OTC medications", "count", len(medications))
	return nil
}

func (s *Seeder) seedInteractions(ctx context.Context) error {
	interactions := []entities.DrugInteraction{
		{
			Drug1RxCui:  "161",
			Drug2RxCui:  "5640",
			Drug1Name:   "Tylenol",
			Drug2Name:   "Advil",
			Severity:    entities.SeverityMinor,
			Description: "Both reduce pain and fever. Using together may provide enhanced relief.",
			Source:      "Seed Data",
			SourceDate:  time.Now(),
		},
	}

	for i := range interactions {
		if _, err := s.interactions.Add(ctx, &interactions[i]); err != nil {
			return fmt.Errorf("seed interaction %s-%s: %w",
				interactions[i].Drug1RxCui, interactions[i].Drug2RxCui, err)
		}
	}

	logging.Info("Seeded drug interactions", "count", len(interactions))
	return nil
}
