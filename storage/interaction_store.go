package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medtrack/medication-api/entities"
)

const interactionColumns = `id, drug1_rxcui, drug2_rxcui, drug1_name,
	drug2_name, severity, interaction_type, description, recommendation,
	source, source_date, created_at, updated_at`

// InteractionStore persists drug-drug interactions, one row per unordered
// RxCui pair.
type InteractionStore struct {
	db *DB
}

func NewInteractionStore(db *DB) *InteractionStore {
	return &InteractionStore{db: db}
}

// pairKey returns the canonical ordering of an RxCui pair.
func pairKey(rxCui1, rxCui2 string) (lo, hi string) {
	if rxCui1 <= rxCui2 {
		return rxCui1, rxCui2
	}
	return rxCui2, rxCui1
}

func scanInteraction(row interface{ Scan(...any) error }) (*entities.DrugInteraction, error) {
	var di entities.DrugInteraction
	err := row.Scan(&di.ID, &di.Drug1RxCui, &di.Drug2RxCui, &di.Drug1Name,
		&di.Drug2Name, &di.Severity, &di.InteractionType, &di.Description,
		&di.Recommendation, &di.Source, &di.SourceDate,
		&di.CreatedAt, &di.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &di, nil
}

func (s *InteractionStore) GetByID(ctx context.Context, id int64) (*entities.DrugInteraction, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+interactionColumns+" FROM drug_interactions WHERE id = ?", id)
	di, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction: %w", err)
	}
	return di, nil
}

func (s *InteractionStore) GetAll(ctx context.Context) ([]entities.DrugInteraction, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+interactionColumns+" FROM drug_interactions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []entities.DrugInteraction
	for rows.Next() {
		di, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, *di)
	}
	return out, rows.Err()
}

func (s *InteractionStore) Find(ctx context.Context, match func(*entities.DrugInteraction) bool) ([]entities.DrugInteraction, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.DrugInteraction
	for i := range all {
		if match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *InteractionStore) FindFirst(ctx context.Context, match func(*entities.DrugInteraction) bool) (*entities.DrugInteraction, error) {
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

func (s *InteractionStore) Add(ctx context.Context, di *entities.DrugInteraction) (*entities.DrugInteraction, error) {
	now := time.Now()
	di.CreatedAt = now
	di.UpdatedAt = now
	lo, hi := pairKey(di.Drug1RxCui, di.Drug2RxCui)

	res, err := s.db.conn.ExecContext(ctx, `INSERT INTO drug_interactions
		(drug1_rxcui, drug2_rxcui, drug1_name, drug2_name, severity,
		 interaction_type, description, recommendation, source, source_date,
		 created_at, updated_at, pair_lo, pair_hi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		di.Drug1RxCui, di.Drug2RxCui, di.Drug1Name, di.Drug2Name, di.Severity,
		di.InteractionType, di.Description, di.Recommendation, di.Source,
		di.SourceDate, di.CreatedAt, di.UpdatedAt, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	di.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	return di, nil
}

func (s *InteractionStore) Update(ctx context.Context, di *entities.DrugInteraction) (*entities.DrugInteraction, error) {
	di.UpdatedAt = time.Now()
	lo, hi := pairKey(di.Drug1RxCui, di.Drug2RxCui)

	_, err := s.db.conn.ExecContext(ctx, `UPDATE drug_interactions SET
		drug1_rxcui = ?, drug2_rxcui = ?, drug1_name = ?, drug2_name = ?,
		severity = ?, interaction_type = ?, description = ?,
		recommendation = ?, source = ?, source_date = ?, updated_at = ?,
		pair_lo = ?, pair_hi = ?
		WHERE id = ?`,
		di.Drug1RxCui, di.Drug2RxCui, di.Drug1Name, di.Drug2Name, di.Severity,
		di.InteractionType, di.Description, di.Recommendation, di.Source,
		di.SourceDate, di.UpdatedAt, lo, hi, di.ID)
	if err != nil {
		return nil, fmt.Errorf("update interaction: %w", err)
	}
	return di, nil
}

func (s *InteractionStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.conn.ExecContext(ctx, "DELETE FROM drug_interactions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete interaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete interaction: %w", err)
	}
	return n > 0, nil
}

func (s *InteractionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM drug_interactions").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

func (s *InteractionStore) CountWhere(ctx context.Context, match func(*entities.DrugInteraction) bool) (int, error) {
	found, err := s.Find(ctx, match)
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

// GetByPair returns the stored interaction for an unordered RxCui pair, or
// nil when the pair has never been recorded.
func (s *InteractionStore) GetByPair(ctx context.Context, rxCui1, rxCui2 string) (*entities.DrugInteraction, error) {
	lo, hi := pairKey(rxCui1, rxCui2)
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+interactionColumns+" FROM drug_interactions WHERE pair_lo = ? AND pair_hi = ?",
		lo, hi)
	di, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction by pair: %w", err)
	}
	return di, nil
}
