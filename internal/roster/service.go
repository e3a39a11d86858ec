package roster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddStudent validates raw form input and stores a new student.
// An empty points value means 0.
func (s *Service) AddStudent(ctx context.Context, name, school, points string) (Student, error) {
	name = strings.TrimSpace(name)
	school = strings.TrimSpace(school)
	points = strings.TrimSpace(points)

	if name == "" || school == "" {
		return Student{}, fmt.Errorf("%w: Student name and school are required", ErrValidation)
	}

	value := 0
	if points != "" {
		parsed, err := strconv.Atoi(points)
		if err != nil {
			return Student{}, fmt.Errorf("%w: Points must be an integer", ErrValidation)
		}
		value = parsed
	}

	return s.repo.CreateStudent(ctx, Student{Name: name, School: school, Points: value})
}

func (s *Service) GetStudent(ctx context.Context, id int64) (Student, error) {
	if id <= 0 {
		return Student{}, ErrStudentNotFound
	}
	return s.repo.GetStudent(ctx, id)
}

func (s *Service) ListStudents(ctx context.Context, order Order) ([]Student, error) {
	return s.repo.ListStudents(ctx, order)
}

func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrStudentNotFound
	}
	return s.repo.DeleteStudent(ctx, id)
}

func (s *Service) ListEliminated(ctx context.Context) ([]EliminatedStudent, error) {
	return s.repo.ListEliminated(ctx)
}

func (s *Service) MaxNumber(ctx context.Context) (int, error) {
	return s.repo.GetMaxNumber(ctx)
}

// UpdateMaxNumber overwrites the max_number setting. The stored value is left
// untouched when validation fails.
func (s *Service) UpdateMaxNumber(ctx context.Context, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: Maximum number must be > 0", ErrValidation)
	}
	if value > MaxNumberLimit {
		return fmt.Errorf("%w: Maximum number must be between 1 and %d", ErrValidation, MaxNumberLimit)
	}
	return s.repo.SetMaxNumber(ctx, value)
}

func (s *Service) UpdateMaxNumberText(ctx context.Context, raw string) error {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: Maximum number must be an integer", ErrValidation)
	}
	return s.UpdateMaxNumber(ctx, value)
}

// AwardPoint adds one point to the student in a single statement.
func (s *Service) AwardPoint(ctx context.Context, id int64) (Student, error) {
	if id <= 0 {
		return Student{}, ErrStudentNotFound
	}
	return s.repo.AwardPoint(ctx, id)
}

// Eliminate moves the student into the eliminated record. The snapshot insert
// and the roster delete commit together or not at all.
func (s *Service) Eliminate(ctx context.Context, id int64) (EliminatedStudent, error) {
	if id <= 0 {
		return EliminatedStudent{}, ErrStudentNotFound
	}
	return s.repo.EliminateStudent(ctx, id)
}
