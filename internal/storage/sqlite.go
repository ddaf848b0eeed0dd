package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLite keeps profile blobs in the local_storage table.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db}
}

func (s *SQLite) GetItem(ctx context.Context, profile, key string) (string, bool, error) {
	if profile == "" {
		return "", false, ErrEmptyProfile
	}
	var v string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM local_storage
		WHERE profile_id = ? AND key = ?
	`, profile, key).Scan(&v)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get item: %w", err)
	}
	return v, true, nil
}

func (s *SQLite) SetItem(ctx context.Context, profile, key, value string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO local_storage (profile_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, profile, key, value)
	if err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

func (s *SQLite) RemoveItem(ctx context.Context, profile, key string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM local_storage WHERE profile_id = ? AND key = ?
	`, profile, key); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}
