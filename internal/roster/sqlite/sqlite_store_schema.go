package sqlite

import (
	"context"
	"fmt"

	"spelling-bee/internal/roster"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL CHECK (name <> ''),
			school TEXT NOT NULL CHECK (school <> ''),
			points INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS eliminated_students (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			school TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			eliminated_at_unix INTEGER NOT NULL
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL CHECK (value BETWEEN 1 AND %d)
		);`, roster.MaxNumberLimit),
		`CREATE INDEX IF NOT EXISTS idx_students_leaderboard ON students(points DESC, name ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_students_name ON students(name);`,
		// The max_number row must always exist.
		fmt.Sprintf(`INSERT OR IGNORE INTO settings (key, value) VALUES ('%s', %d);`, roster.MaxNumberKey, roster.DefaultMaxNumber),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
