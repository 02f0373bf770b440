package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medtrack/medication-api/entities"
)

const userMedicationColumns = `id, medication_id, dose, dose_unit, frequency,
	timing_preferences, specific_times, with_food, on_empty_stomach,
	special_instructions, active, start_date, end_date, created_at, updated_at`

// UserMedicationStore persists regimen entries. The Medication join field is
// not loaded here; services hydrate it when needed.
type UserMedicationStore struct {
	db *DB
}

func NewUserMedicationStore(db *DB) *UserMedicationStore {
	return &UserMedicationStore{db: db}
}

func scanUserMedication(row interface{ Scan(...any) error }) (*entities.UserMedication, error) {
	var um entities.UserMedication
	var prefs, times string
	var start, end sql.NullTime
	err := row.Scan(&um.ID, &um.MedicationID, &um.Dose, &um.DoseUnit,
		&um.Frequency, &prefs, &times, &um.WithFood, &um.OnEmptyStomach,
		&um.SpecialInstructions, &um.Active, &start, &end,
		&um.CreatedAt, &um.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeList(prefs, &um.TimingPreferences); err != nil {
		return nil, err
	}
	if err := decodeList(times, &um.SpecificTimes); err != nil {
		return nil, err
	}
	if start.Valid {
		um.StartDate = &start.Time
	}
	if end.Valid {
		um.EndDate = &end.Time
	}
	return &um, nil
}

func (s *UserMedicationStore) GetByID(ctx context.Context, id int64) (*entities.UserMedication, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+userMedicationColumns+" FROM user_medications WHERE id = ?", id)
	um, err := scanUserMedication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user medication: %w", err)
	}
	return um, nil
}

func (s *UserMedicationStore) GetAll(ctx context.Context) ([]entities.UserMedication, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+userMedicationColumns+" FROM user_medications ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list user medications: %w", err)
	}
	defer rows.Close()

	var out []entities.UserMedication
	for rows.Next() {
		um, err := scanUserMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user medication: %w", err)
		}
		out = append(out, *um)
	}
	return out, rows.Err()
}

func (s *UserMedicationStore) Find(ctx context.Context, match func(*entities.UserMedication) bool) ([]entities.UserMedication, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.UserMedication
	for i := range all {
		if match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *UserMedicationStore) FindFirst(ctx context.Context, match func(*entities.UserMedication) bool) (*entities.UserMedication, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(&all[i]) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (s *UserMedicationStore) Add(ctx context.Context, um *entities.UserMedication) (*entities.UserMedication, error) {
	now := time.Now()
	um.CreatedAt = now
	um.UpdatedAt = now

	prefs, err := encodeList(um.TimingPreferences)
	if err != nil {
		return nil, err
	}
	times, err := encodeList(um.SpecificTimes)
	if err != nil {
		return nil, err
	}

	res, err := s.db.conn.ExecContext(ctx, `INSERT INTO user_medications
		(medication_id, dose, dose_unit, frequency, timing_preferences,
		 specific_times, with_food, on_empty_stomach, special_instructions,
		 active, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		um.MedicationID, um.Dose, um.DoseUnit, um.Frequency, prefs, times,
		um.WithFood, um.OnEmptyStomach, um.SpecialInstructions, um.Active,
		um.StartDate, um.EndDate, um.CreatedAt, um.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user medication: %w", err)
	}
	um.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user medication: %w", err)
	}
	return um, nil
}

func (s *UserMedicationStore) Update(ctx context.Context, um *entities.UserMedication) (*entities.UserMedication, error) {
	um.UpdatedAt = time.Now()

	prefs, err := encodeList(um.TimingPreferences)
	if err != nil {
		return nil, err
	}
	times, err := encodeList(um.SpecificTimes)
	if err != nil {
		return nil, err
	}

	_, err = s.db.conn.ExecContext(ctx, `UPDATE user_medications SET
		medication_id = ?, dose = ?, dose_unit = ?, frequency = ?,
		timing_preferences = ?, specific_times = ?, with_food = ?,
		on_empty_stomach = ?, special_instructions = ?, active = ?,
		start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		um.MedicationID, um.Dose, um.DoseUnit, um.Frequency, prefs, times,
		um.WithFood, um.OnEmptyStomach, um.SpecialInstructions, um.Active,
		um.StartDate, um.EndDate, um.UpdatedAt, um.ID)
	if err != nil {
		return nil, fmt.Errorf("update user medication: %w", err)
	}
	return um, nil
}

func (s *UserMedicationStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.conn.ExecContext(ctx, "DELETE FROM user_medications WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete user medication: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user medication: %w", err)
	}
	return n > 0, nil
}

func (s *UserMedicationStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_medications").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user medications: %w", err)
	}
	return n, nil
}

func (s *UserMedicationStore) CountWhere(ctx context.Context, match func(*entities.UserMedication) bool) (int, error) {
	found, err := s.Find(ctx, match)
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

// GetActive returns all regimen entries still in use.
func (s *UserMedicationStore) GetActive(ctx context.Context) ([]entities.UserMedication, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+userMedicationColumns+" FROM user_medications WHERE active = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list active user medications: %w", err)
	}
	defer rows.Close()

	var out []entities.UserMedication
	for rows.Next() {
		um, err := scanUserMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user medication: %w", err)
		}
		out = append(out, *um)
	}
	return out, rows.Err()
}
