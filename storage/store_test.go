package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/medtrack/medication-api/entities"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMedicationRoundTrip(t *testing.T) {
	store := NewMedicationStore(openTestDB(t))
	ctx := context.Background()

	added, err := store.Add(ctx, &entities.Medication{
		RxCui:             "161",
		Name:              "Tylenol",
		GenericName:       "acetaminophen",
		ActiveIngredients: []string{"acetaminophen"},
		Strength:          "500 mg",
		DosageForm:        "tablet",
		IsOTC:             true,
		MaxDailyDose:      4000,
		MaxDailyDoseUnit:  "mg",
		DataSource:        "Test",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.ID == 0 {
		t.Fatal("Expected assigned ID")
	}

	got, err := store.GetByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected medication back")
	}
	if got.Name != "Tylenol" || got.RxCui != "161" || !got.IsOTC {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if len(got.ActiveIngredients) != 1 || got.ActiveIngredients[0] != "acetaminophen" {
		t.Errorf("Expected ingredient list preserved, got %v", got.ActiveIngredients)
	}
}

func TestMedicationGetByRxCui(t *testing.T) {
	store := NewMedicationStore(openTestDB(t))
	ctx := context.Background()

	store.Add(ctx, &entities.Medication{RxCui: "5640", Name: "Advil", DataSource: "Test"})

	got, err := store.GetByRxCui(ctx, "5640")
	if err != nil {
		t.Fatalf("GetByRxCui failed: %v", err)
	}
	if got == nil || got.Name != "Advil" {
		t.Errorf("Expected Advil, got %+v", got)
	}

	missing, err := store.GetByRxCui(ctx, "999999")
	if err != nil {
		t.Fatalf("GetByRxCui failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown RxCui, got %+v", missing)
	}
}

func TestMedicationGetByIDMissing(t *testing.T) {
	store := NewMedicationStore(openTestDB(t))

	got, err := store.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Expected no error for missing row, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}

func TestMedicationUpdateAndDelete(t *testing.T) {
	store := NewMedicationStore(openTestDB(t))
	ctx := context.Background()

	added, _ := store.Add(ctx, &entities.Medication{RxCui: "161", Name: "Tylenol", DataSource: "Test"})

	added.Name = "Tylenol Extra Strength"
	if _, err := store.Update(ctx, added); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, added.ID)
	if got.Name != "Tylenol Extra Strength" {
		t.Errorf("Expected updated name, got %q", got.Name)
	}

	deleted, err := store.Delete(ctx, added.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete failed: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.Delete(ctx, added.ID)
	if err != nil {
		t.Fatalf("Second delete errored: %v", err)
	}
	if deleted {
		t.Error("Expected second delete to report no rows")
	}
}

func TestUserMedicationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	medStore := NewMedicationStore(db)
	store := NewUserMedicationStore(db)
	ctx := context.Background()

	med, _ := medStore.Add(ctx, &entities.Medication{RxCui: "161", Name: "Tylenol", DataSource: "Test"})

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	added, err := store.Add(ctx, &entities.UserMedication{
		MedicationID:      med.ID,
		Dose:              500,
		DoseUnit:          "mg",
		Frequency:         2,
		TimingPreferences: []entities.TimingPreference{entities.Morning, entities.Evening},
		SpecificTimes:     []entities.TimeOfDay{entities.TimeOfDayFromHM(8, 30)},
		WithFood:          true,
		Active:            true,
		StartDate:         &start,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.GetByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Dose != 500 || got.Frequency != 2 || !got.WithFood {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if len(got.TimingPreferences) != 2 || got.TimingPreferences[0] != entities.Morning {
		t.Errorf("Expected timing preferences preserved, got %v", got.TimingPreferences)
	}
	if len(got.SpecificTimes) != 1 || got.SpecificTimes[0].String() != "08:30" {
		t.Errorf("Expected specific times preserved, got %v", got.SpecificTimes)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("Expected start date preserved, got %v", got.StartDate)
	}
	if got.EndDate != nil {
		t.Errorf("Expected nil end date, got %v", got.EndDate)
	}
}

func TestUserMedicationGetActive(t *testing.T) {
	db := openTestDB(t)
	medStore := NewMedicationStore(db)
	store := NewUserMedicationStore(db)
	ctx := context.Background()

	med, _ := medStore.Add(ctx, &entities.Medication{RxCui: "161", Name: "Tylenol", DataSource: "Test"})

	active, _ := store.Add(ctx, &entities.UserMedication{MedicationID: med.ID, Dose: 500, DoseUnit: "mg", Frequency: 2, Active: true})
	store.Add(ctx, &entities.UserMedication{MedicationID: med.ID, Dose: 200, DoseUnit: "mg", Frequency: 1, Active: false})

	got, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Errorf("Expected only the active entry, got %+v", got)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 2 {
		t.Errorf("Expected both rows in history, got %d", len(all))
	}
}

func TestInteractionGetByPairOrderInsensitive(t *testing.T) {
	store := NewInteractionStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Add(ctx, &entities.DrugInteraction{
		Drug1RxCui:  "5640",
		Drug2RxCui:  "161",
		Drug1Name:   "Advil",
		Drug2Name:   "Tylenol",
		Severity:    entities.SeverityMinor,
		Description: "Both reduce pain and fever.",
		Source:      "Test",
		SourceDate:  time.Now(),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	forward, err := store.GetByPair(ctx, "5640", "161")
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if forward == nil {
		t.Fatal("Expected stored pair found")
	}

	reversed, err := store.GetByPair(ctx, "161", "5640")
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if reversed == nil || reversed.ID != forward.ID {
		t.Errorf("Expected same row regardless of argument order, got %+v", reversed)
	}

	missing, err := store.GetByPair(ctx, "161", "1049502")
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown pair, got %+v", missing)
	}
}

func TestInteractionDuplicatePairRejected(t *testing.T) {
	store := NewInteractionStore(openTestDB(t))
	ctx := context.Background()

	seed := entities.DrugInteraction{
		Drug1RxCui: "161", Drug2RxCui: "5640",
		Severity: entities.SeverityMinor, Source: "Test", SourceDate: time.Now(),
	}
	if _, err := store.Add(ctx, &seed); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reversed := entities.DrugInteraction{
		Drug1RxCui: "5640", Drug2RxCui: "161",
		Severity: entities.SeverityMinor, Source: "Test", SourceDate: time.Now(),
	}
	if _, err := store.Add(ctx, &reversed); err == nil {
		t.Error("Expected unique pair index to reject the reversed duplicate")
	}
}

func TestSettingStoreSetGet(t *testing.T) {
	store := NewSettingStore(openTestDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, "schema_version", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, "schema_version")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Value != "1" {
		t.Fatalf("Expected value back, got %+v", got)
	}

	// Upsert overwrites.
	if err := store.Set(ctx, "schema_version", "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, _ = store.Get(ctx, "schema_version")
	if got.Value != "2" {
		t.Errorf("Expected overwritten value, got %q", got.Value)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown key, got %+v", missing)
	}
}
