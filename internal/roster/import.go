package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportPolicy decides what happens to rows that cannot become students.
type ImportPolicy string

const (
	// ImportSkip drops malformed rows and imports the rest.
	ImportSkip ImportPolicy = "skip"
	// ImportStrict rejects the whole batch when any row is malformed.
	ImportStrict ImportPolicy = "strict"
)

const (
	RowImported = "imported"
	RowSkipped  = "skipped"
)

func ParseImportPolicy(value string) (ImportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ImportSkip):
		return ImportSkip, nil
	case string(ImportStrict):
		return ImportStrict, nil
	default:
		return "", fmt.Errorf("%w: unknown import policy %q", ErrValidation, value)
	}
}

type RowResult struct {
	Line   int    `json:"line"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ImportResult struct {
	Imported int         `json:"imported"`
	Rows     []RowResult `json:"rows"`
}

func (r ImportResult) Message() string {
	return fmt.Sprintf("%d students added successfully", r.Imported)
}

type importRow struct {
	line   int
	fields []string
}

// BulkAdd imports rows of (name, school, [points]). Line numbers in the
// report are 1-based row positions.
func (s *Service) BulkAdd(ctx context.Context, rows [][]string, policy ImportPolicy) (ImportResult, error) {
	numbered := make([]importRow, 0, len(rows))
	for idx, fields := range rows {
		numbered = append(numbered, importRow{line: idx + 1, fields: fields})
	}
	return s.importRows(ctx, numbered, policy)
}

// ImportCSV reads a CSV stream and imports it through BulkAdd rules. A stream
// that cannot be parsed fails with ErrImportFailed and commits nothing.
func (s *Service) ImportCSV(ctx context.Context, in io.Reader, policy ImportPolicy) (ImportResult, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	rows := make([]importRow, 0)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, importRow{line: line, fields: fields})
	}

	return s.importRows(ctx, rows, policy)
}

func (s *Service) importRows(ctx context.Context, rows []importRow, policy ImportPolicy) (ImportResult, error) {
	if policy == "" {
		policy = ImportSkip
	}

	result := ImportResult{Rows: make([]RowResult, 0, len(rows))}
	students := make([]Student, 0, len(rows))
	firstReject := -1

	for _, row := range rows {
		student, reason := studentFromRow(row.fields)
		if reason != "" {
			result.Rows = append(result.Rows, RowResult{Line: row.line, Status: RowSkipped, Reason: reason})
			if firstReject < 0 {
				firstReject = len(result.Rows) - 1
			}
			continue
		}
		students = append(students, student)
		result.Rows = append(result.Rows, RowResult{Line: row.line, Status: RowImported})
	}

	if policy == ImportStrict && firstReject >= 0 {
		rejected := result.Rows[firstReject]
		return result, fmt.Errorf("%w: row %d: %s", ErrValidation, rejected.Line, rejected.Reason)
	}

	if len(students) == 0 {
		return result, nil
	}

	count, err := s.repo.CreateStudents(ctx, students)
	if err != nil {
		return ImportResult{}, err
	}
	result.Imported = count
	return result, nil
}

func studentFromRow(fields []string) (Student, string) {
	if len(fields) < 2 {
		return Student{}, "expected at least name and school"
	}

	name := strings.TrimSpace(fields[0])
	school := strings.TrimSpace(fields[1])
	if name == "" || school == "" {
		return Student{}, "name and school are required"
	}

	points := 0
	if len(fields) > 2 {
		points = parseImportPoints(fields[2])
	}

	return Student{Name: name, School: school, Points: points}, ""
}

// parseImportPoints accepts only a bare run of digits; anything else, including
// surrounding spaces or a sign, counts as 0.
func parseImportPoints(raw string) int {
	if raw == "" {
		return 0
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
