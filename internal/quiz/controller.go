package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spelling-bee/internal/roster"
)

var ErrAlreadyResolved = errors.New("number already resolved")

const ResultCorrect = "correct"

// Roster is the part of the roster service the quiz flow depends on.
type Roster interface {
	GetStudent(ctx context.Context, id int64) (roster.Student, error)
	ListStudents(ctx context.Context, order roster.Order) ([]roster.Student, error)
	MaxNumber(ctx context.Context) (int, error)
	AwardPoint(ctx context.Context, id int64) (roster.Student, error)
	Eliminate(ctx context.Context, id int64) (roster.EliminatedStudent, error)
}

type NumberCard struct {
	Number int    `json:"number"`
	Status Status `json:"status,omitempty"`
}

type NumberBoard struct {
	Student   roster.Student `json:"student"`
	MaxNumber int            `json:"max_number"`
	Cards     []NumberCard   `json:"numbers"`
}

type Outcome struct {
	StudentID int64  `json:"student_id"`
	Number    int    `json:"number"`
	Word      string `json:"word"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

type ResultRow struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Points int    `json:"points"`
	Total  int    `json:"total"`
}

// Controller drives a student through pick number -> spell word -> outcome.
// Per-number state lives in the Session passed to each call.
type Controller struct {
	roster Roster
	words  WordList
	locks  *studentLocks
	logger *slog.Logger
	now    func() time.Time
}

func NewController(r Roster, words WordList, logger *slog.Logger) *Controller {
	if words.Len() == 0 {
		words = DefaultWordList()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		roster: r,
		words:  words,
		locks:  newStudentLocks(),
		logger: logger,
		now:    time.Now,
	}
}

// ChooseNumber lists every number in [1, max_number] with its status in the
// session. It does not change any state.
func (c *Controller) ChooseNumber(ctx context.Context, sess *Session, studentID int64) (NumberBoard, error) {
	student, err := c.roster.GetStudent(ctx, studentID)
	if err != nil {
		return NumberBoard{}, err
	}

	maxNumber, err := c.roster.MaxNumber(ctx)
	if err != nil {
		return NumberBoard{}, err
	}

	// Rows written before the upper bound existed may still be larger.
	if maxNumber > roster.MaxNumberLimit {
		maxNumber = roster.MaxNumberLimit
	}

	answered := sess.Snapshot()
	cards := make([]NumberCard, 0, maxNumber)
	for n := 1; n <= maxNumber; n++ {
		cards = append(cards, NumberCard{Number: n, Status: answered[n].Status})
	}

	return NumberBoard{Student: student, MaxNumber: maxNumber, Cards: cards}, nil
}

// StartQuiz marks number as pending and returns its word. A number that was
// already resolved is reset to pending.
func (c *Controller) StartQuiz(ctx context.Context, sess *Session, studentID int64, number int) (Assignment, error) {
	student, err := c.roster.GetStudent(ctx, studentID)
	if err != nil {
		return Assignment{}, err
	}

	maxNumber, err := c.roster.MaxNumber(ctx)
	if err != nil {
		return Assignment{}, err
	}
	if number < 1 || number > maxNumber {
		return Assignment{}, fmt.Errorf("%w: number must be between 1 and %d", roster.ErrValidation, maxNumber)
	}

	sess.set(number, StatusPending, student.ID, c.now())
	return c.words.Assign(number), nil
}

// Word returns the assignment for number without touching the session.
func (c *Controller) Word(ctx context.Context, studentID int64, number int) (Assignment, error) {
	if _, err := c.roster.GetStudent(ctx, studentID); err != nil {
		return Assignment{}, err
	}
	if number < 1 {
		return Assignment{}, fmt.Errorf("%w: number must be positive", roster.ErrValidation)
	}
	return c.words.Assign(number), nil
}

// ResolveWord applies the submitted result. "correct" awards a point; any
// other value eliminates the student. Both outcomes are terminal for the
// number until StartQuiz re-arms it.
func (c *Controller) ResolveWord(ctx context.Context, sess *Session, studentID int64, number int, result string) (Outcome, error) {
	if number < 1 {
		return Outcome{}, fmt.Errorf("%w: number must be positive", roster.ErrValidation)
	}

	unlock := c.locks.lock(studentID)
	defer unlock()

	if status := sess.Status(number); status.Terminal() {
		return Outcome{}, fmt.Errorf("%w: number %d is %s", ErrAlreadyResolved, number, status)
	}

	student, err := c.roster.GetStudent(ctx, studentID)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		StudentID: student.ID,
		Number:    number,
		Word:      c.words.WordFor(number),
	}

	if strings.TrimSpace(result) == ResultCorrect {
		if _, err := c.roster.AwardPoint(ctx, student.ID); err != nil {
			return Outcome{}, err
		}
		outcome.Status = StatusCorrect
		outcome.Message = fmt.Sprintf("%s answered correctly! +1 point", student.Name)
	} else {
		snapshot, err := c.roster.Eliminate(ctx, student.ID)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Status = StatusIncorrect
		outcome.Message = fmt.Sprintf("%s is eliminated!", student.Name)
		c.logger.Info("student eliminated",
			"student_id", student.ID,
			"name", student.Name,
			"points", snapshot.Points,
			"number", number,
		)
	}

	sess.set(number, outcome.Status, student.ID, c.now())
	return outcome, nil
}

// Results lists the roster in leaderboard order. Total is the number of
// numbers answered in this session and is the same on every row.
func (c *Controller) Results(ctx context.Context, sess *Session) ([]ResultRow, error) {
	students, err := c.roster.ListStudents(ctx, roster.OrderLeaderboard)
	if err != nil {
		return nil, err
	}

	total := sess.resolvedCount()
	rows := make([]ResultRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, ResultRow{
			Name:   s.Name,
			School: s.School,
			Points: s.Points,
			Total:  total,
		})
	}
	return rows, nil
}

type studentLock struct {
	mu   sync.Mutex
	refs int
}

// studentLocks serialises mutations per student id.
type studentLocks struct {
	mu    sync.Mutex
	locks map[int64]*studentLock
}

func newStudentLocks() *studentLocks {
	return &studentLocks{locks: make(map[int64]*studentLock)}
}

func (l *studentLocks) lock(id int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &studentLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
