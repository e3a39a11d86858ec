package roster

import (
	"context"
	"errors"
	"time"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrStudentNotFound = errors.New("student not found")
	ErrImportFailed    = errors.New("import failed")
)

const (
	DefaultMaxNumber = 100
	// MaxNumberLimit bounds max_number; the number board holds one card per number.
	MaxNumberLimit = 10000
	MaxNumberKey     = "max_number"
)

// Order selects how ListStudents sorts the roster.
type Order int

const (
	// OrderLeaderboard sorts by points desc, then name asc.
	OrderLeaderboard Order = iota
	// OrderName sorts by name asc.
	OrderName
)

type Student struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	School string `json:"school"`
	Points int    `json:"points"`
}

// EliminatedStudent is the snapshot kept after a student leaves the roster.
type EliminatedStudent struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	School       string    `json:"school"`
	Points       int       `json:"points"`
	EliminatedAt time.Time `json:"eliminated_at"`
}

type Repository interface {
	CreateStudent(ctx context.Context, student Student) (Student, error)
	// CreateStudents inserts every student in one transaction and returns the count.
	CreateStudents(ctx context.Context, students []Student) (int, error)
	GetStudent(ctx context.Context, id int64) (Student, error)
	ListStudents(ctx context.Context, order Order) ([]Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	AwardPoint(ctx context.Context, id int64) (Student, error)
	EliminateStudent(ctx context.Context, id int64) (EliminatedStudent, error)
	ListEliminated(ctx context.Context) ([]EliminatedStudent, error)
	GetMaxNumber(ctx context.Context) (int, error)
	SetMaxNumber(ctx context.Context, value int) error
	Close() error
}
