package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"spelling-bee/internal/roster"
)

func (s *SQLiteStore) CreateStudent(ctx context.Context, student roster.Student) (roster.Student, error) {
	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO students (name, school, points) VALUES (?, ?, ?)`,
		student.Name,
		student.School,
		student.Points,
	)
	if err != nil {
		return roster.Student{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return roster.Student{}, err
	}
	student.ID = id
	return student, nil
}

// CreateStudents runs as one transaction: either every row lands or none do.
func (s *SQLiteStore) CreateStudents(ctx context.Context, students []roster.Student) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO students (name, school, points) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, student := range students {
		if _, err := stmt.ExecContext(ctx, student.Name, student.School, student.Points); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(students), nil
}

func (s *SQLiteStore) GetStudent(ctx context.Context, id int64) (roster.Student, error) {
	return getStudent(ctx, s.db, id)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getStudent(ctx context.Context, q rowQuerier, id int64) (roster.Student, error) {
	var student roster.Student
	err := q.QueryRowContext(
		ctx,
		`SELECT id, name, school, points FROM students WHERE id = ?`,
		id,
	).Scan(&student.ID, &student.Name, &student.School, &student.Points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.Student{}, roster.ErrStudentNotFound
		}
		return roster.Student{}, err
	}
	return student, nil
}

func (s *SQLiteStore) ListStudents(ctx context.Context, order roster.Order) ([]roster.Student, error) {
	query := `SELECT id, name, school, points FROM students ORDER BY points DESC, name ASC, id ASC`
	if order == roster.OrderName {
		query = `SELECT id, name, school, points FROM students ORDER BY name ASC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query)
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

func (s *SQLiteStore) DeleteStudent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *SQLiteStore) AwardPoint(ctx context.Context, id int64) (roster.Student, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return roster.Student{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE students SET points = points + 1 WHERE id = ?`, id)
	if err != nil {
		return roster.Student{}, err
	}
	if err := requireAffected(result); err != nil {
		return roster.Student{}, err
	}

	student, err := getStudent(ctx, tx, id)
	if err != nil {
		return roster.Student{}, err
	}

	if err := tx.Commit(); err != nil {
		return roster.Student{}, err
	}
	return student, nil
}

// EliminateStudent copies the student into eliminated_students and deletes the
// roster row in the same transaction. The delete must remove exactly the row
// that was read, otherwise nothing is committed.
func (s *SQLiteStore) EliminateStudent(ctx context.Context, id int64) (roster.EliminatedStudent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}
	defer tx.Rollback()

	student, err := getStudent(ctx, tx, id)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}

	eliminated := roster.EliminatedStudent{
		Name:         student.Name,
		School:       student.School,
		Points:       student.Points,
		EliminatedAt: time.Now().UTC(),
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO eliminated_students (name, school, points, eliminated_at_unix) VALUES (?, ?, ?, ?)`,
		eliminated.Name,
		eliminated.School,
		eliminated.Points,
		eliminated.EliminatedAt.UnixNano(),
	)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}
	if eliminated.ID, err = result.LastInsertId(); err != nil {
		return roster.EliminatedStudent{}, err
	}

	deleted, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return roster.EliminatedStudent{}, err
	}
	if err := requireAffected(deleted); err != nil {
		return roster.EliminatedStudent{}, err
	}

	if err := tx.Commit(); err != nil {
		return roster.EliminatedStudent{}, err
	}
	return eliminated, nil
}

func (s *SQLiteStore) ListEliminated(ctx context.Context) ([]roster.EliminatedStudent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, school, points, eliminated_at_unix
		 FROM eliminated_students
		 ORDER BY eliminated_at_unix ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eliminated := make([]roster.EliminatedStudent, 0)
	for rows.Next() {
		var (
			item             roster.EliminatedStudent
			eliminatedAtUnix int64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.School, &item.Points, &eliminatedAtUnix); err != nil {
			return nil, err
		}
		item.EliminatedAt = time.Unix(0, eliminatedAtUnix).UTC()
		eliminated = append(eliminated, item)
	}

	return eliminated, rows.Err()
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return roster.ErrStudentNotFound
	}
	return nil
}
