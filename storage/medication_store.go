package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medtrack/medication-api/entities"
)

const medicationColumns = `id, rxcui, name, generic_name, active_ingredients,
	strength, dosage_form, route, is_otc, max_daily_dose, max_daily_dose_unit,
	manufacturer, ndc, data_source, created_at, updated_at`

// MedicationStore persists master medication records.
type MedicationStore struct {
	db *DB
}

func NewMedicationStore(db *DB) *MedicationStore {
	return &MedicationStore{db: db}
}

func scanMedication(row interface{ Scan(...any) error }) (*entities.Medication, error) {
	var m entities.Medication
	var ingredients string
	err := row.Scan(&m.ID, &m.RxCui, &m.Name, &m.GenericName, &ingredients,
		&m.Strength, &m.DosageForm, &m.Route, &m.IsOTC, &m.MaxDailyDose,
		&m.MaxDailyDoseUnit, &m.Manufacturer, &m.NDC, &m.DataSource,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeList(ingredients, &m.ActiveIngredients); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MedicationStore) GetByID(ctx context.Context, id int64) (*entities.Medication, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE id = ?", id)
	m, err := scanMedication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return m, nil
}

func (s *MedicationStore) GetAll(ctx context.Context) ([]entities.Medication, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+medicationColumns+" FROM medications ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var out []entities.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *MedicationStore) Find(ctx context.Context, match func(*entities.Medication) bool) ([]entities.Medication, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.Medication
	for i := range all {
		if match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *MedicationStore) FindFirst(ctx context.Context, match func(*entities.Medication) bool) (*entities.Medication, error) {
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

func (s *MedicationStore) Add(ctx context.Context, m *entities.Medication) (*entities.Medication, error) {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	ingredients, err := encodeList(m.ActiveIngredients)
	if err != nil {
		return nil, err
	}

	res, err := s.db.conn.ExecContext(ctx, `INSERT INTO medications
		(rxcui, name, generic_name, active_ingredients, strength, dosage_form,
		 route, is_otc, max_daily_dose, max_daily_dose_unit, manufacturer,
		 ndc, data_source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RxCui, m.Name, m.GenericName, ingredients, m.Strength, m.DosageForm,
		m.Route, m.IsOTC, m.MaxDailyDose, m.MaxDailyDoseUnit, m.Manufacturer,
		m.NDC, m.DataSource, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	return m, nil
}

func (s *MedicationStore) Update(ctx context.Context, m *entities.Medication) (*entities.Medication, error) {
	m.UpdatedAt = time.Now()

	ingredients, err := encodeList(m.ActiveIngredients)
	if err != nil {
		return nil, err
	}

	_, err = s.db.conn.ExecContext(ctx, `UPDATE medications SET
		rxcui = ?, name = ?, generic_name = ?, active_ingredients = ?,
		strength = ?, dosage_form = ?, route = ?, is_otc = ?,
		max_daily_dose = ?, max_daily_dose_unit = ?, manufacturer = ?,
		ndc = ?, data_source = ?, updated_at = ?
		WHERE id = ?`,
		m.RxCui, m.Name, m.GenericName, ingredients, m.Strength, m.DosageForm,
		m.Route, m.IsOTC, m.MaxDailyDose, m.MaxDailyDoseUnit, m.Manufacturer,
		m.NDC, m.DataSource, m.UpdatedAt, m.ID)
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}
	return m, nil
}

func (s *MedicationStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.conn.ExecContext(ctx, "DELETE FROM medications WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete medication: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete medication: %w", err)
	}
	return n > 0, nil
}

func (s *MedicationStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM medications").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count medications: %w", err)
	}
	return n, nil
}

func (s *MedicationStore) CountWhere(ctx context.Context, match func(*entities.Medication) bool) (int, error) {
	found, err := s.Find(ctx, match)
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

// GetByRxCui returns the medication with the given RxCui, or nil when the
// code is not stored locally.
func (s *MedicationStore) GetByRxCui(ctx context.Context, rxCui string) (*entities.Medication, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE rxcui = ? LIMIT 1", rxCui)
	m, err := scanMedication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medication by rxcui: %w", err)
	}
	return m, nil
}
