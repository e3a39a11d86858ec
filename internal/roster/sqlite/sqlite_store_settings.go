package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"spelling-bee/internal/roster"
)

func (s *SQLiteStore) GetMaxNumber(ctx context.Context) (int, error) {
	var value int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM settings WHERE key = ?`,
		roster.MaxNumberKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.DefaultMaxNumber, nil
		}
		return 0, err
	}
	return value, nil
}

func (s *SQLiteStore) SetMaxNumber(ctx context.Context, value int) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		roster.MaxNumberKey,
		value,
	)
	return err
}
