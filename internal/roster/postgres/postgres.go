package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spelling-bee/internal/roster"
)

var _ roster.Repository = (*Storage)(nil)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL CHECK (name <> ''),
			school TEXT NOT NULL CHECK (school <> ''),
			points INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS eliminated_students (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			school TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			eliminated_at TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL CHECK (value BETWEEN 1 AND %d)
		)`, roster.MaxNumberLimit),
		`CREATE INDEX IF NOT EXISTS idx_students_leaderboard ON students (points DESC, name ASC)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
		roster.MaxNumberKey, roster.DefaultMaxNumber,
	)
	return err
}

func (s *Storage) CreateStudent(ctx context.Context, student roster.Student) (roster.Student, error) {
	query := `
	INSERT INTO students (name, school, points) VALUES ($1, $2, $3) RETURNING id
	`

	err := s.pool.QueryRow(ctx, query, student.Name, student.School, student.Points).Scan(&student.ID)
	if err != nil {
		return roster.Student{}, err
	}
	return student, nil
}

func (s *Storage) CreateStudents(ctx context.Context, students []roster.Student) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, student := range students {
		batch.Queue(`INSERT INTO students (name, school, points) VALUES ($1, $2, $3)`,
			student.Name, student.School, student.Points)
	}

	results := tx.SendBatch(ctx, batch)
	for range students {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, err
		}
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(students), nil
}

func (s *Storage) GetStudent(ctx context.Context, id int64) (roster.Student, error) {
	query := `
	SELECT id, name, school, points FROM students WHERE id = $1
	`

	var student roster.Student
	err := s.pool.QueryRow(ctx, query, id).Scan(&student.ID, &student.Name, &student.School, &student.Points)
	if err != nil {
		return roster.Student{}, notFound(err)
	}
	return student, nil
}

func (s *Storage) ListStudents(ctx context.Context, order roster.Order) ([]roster.Student, error) {
	query := `SELECT id, name, school, points FROM students ORDER BY points DESC, name COLLATE "C" ASC, id ASC`
	if order == roster.OrderName {
		query = `SELECT id, name, school, points FROM students ORDER BY name COLLATE "C" ASC, id ASC`
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]roster.Student, 0)
	for rows.Next() {
		var student roster.Student
		if err := rows.Scan(&student.ID, &student.Name, &student.School, &student.Points); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func (s *Storage) DeleteStudent(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return roster.ErrStudentNotFound
	}
	return nil
}

func (s *Storage) AwardPoint(ctx context.Context, id int64) (roster.Student, error) {
	query := `
	UPDATE students SET points = points + 1 WHERE id = $1 RETURNING id, name, school, points
	`

	var student roster.Student
	err := s.pool.QueryRow(ctx, query, id).Scan(&student.ID, &student.Name, &student.School, &student.Points)
	if err != nil {
		return roster.Student{}, notFound(err)
	}
	return student, nil
}

// EliminateStudent locks the roster row, records the snapshot and deletes the
// row in one transaction.
func (s *Storage) EliminateStudent(ctx context.Context, id int64) (roster.EliminatedStudent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}
	defer tx.Rollback(ctx)

	var eliminated roster.EliminatedStudent
	err = tx.QueryRow(ctx,
		`SELECT name, school, points FROM students WHERE id = $1 FOR UPDATE`, id,
	).Scan(&eliminated.Name, &eliminated.School, &eliminated.Points)
	if err != nil {
		return roster.EliminatedStudent{}, notFound(err)
	}

	eliminated.EliminatedAt = time.Now().UTC()
	err = tx.QueryRow(ctx,
		`INSERT INTO eliminated_students (name, school, points, eliminated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		eliminated.Name, eliminated.School, eliminated.Points, eliminated.EliminatedAt,
	).Scan(&eliminated.ID)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}
	if tag.RowsAffected() != 1 {
		return roster.EliminatedStudent{}, fmt.Errorf("eliminate student %d: deleted %d rows", id, tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return roster.EliminatedStudent{}, err
	}
	return eliminated, nil
}

func (s *Storage) ListEliminated(ctx context.Context) ([]roster.EliminatedStudent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, school, points, eliminated_at FROM eliminated_students ORDER BY eliminated_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eliminated := make([]roster.EliminatedStudent, 0)
	for rows.Next() {
		var item roster.EliminatedStudent
		if err := rows.Scan(&item.ID, &item.Name, &item.School, &item.Points, &item.EliminatedAt); err != nil {
			return nil, err
		}
		item.EliminatedAt = item.EliminatedAt.UTC()
		eliminated = append(eliminated, item)
	}
	return eliminated, rows.Err()
}

func (s *Storage) GetMaxNumber(ctx context.Context) (int, error) {
	var value int
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, roster.MaxNumberKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return roster.DefaultMaxNumber, nil
	}
	return value, err
}

func (s *Storage) SetMaxNumber(ctx context.Context, value int) error {
	query := `
	INSERT INTO settings (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := s.pool.Exec(ctx, query, roster.MaxNumberKey, value)
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return roster.ErrStudentNotFound
	}
	return err
}
