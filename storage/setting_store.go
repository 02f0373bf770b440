package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medtrack/medication-api/entities"
)

// SettingStore persists key/value application settings.
type SettingStore struct {
	db *DB
}

func NewSettingStore(db *DB) *SettingStore {
	return &SettingStore{db: db}
}

// Get returns the setting for key, or nil when unset.
func (s *SettingStore) Get(ctx context.Context, key string) (*entities.AppSetting, error) {
	var set entities.AppSetting
	err := s.db.conn.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM app_settings WHERE key = ?", key).
		Scan(&set.Key, &set.Value, &set.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &set, nil
}

// Set inserts or replaces the value for key.
func (s *SettingStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.conn.ExecContext(ctx, `INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
