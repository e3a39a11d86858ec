package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"

	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
)

type adminResponse struct {
	MaxNumber int              `json:"max_number"`
	Students  []roster.Student `json:"students"`
}

type addStudentRequest struct {
	Name   string     `json:"name"`
	School string     `json:"school"`
	Points flexString `json:"points"`
}

type studentResponse struct {
	Student roster.Student `json:"student"`
	Message string         `json:"message"`
}

type importResponse struct {
	Imported int                `json:"imported"`
	Rows     []roster.RowResult `json:"rows"`
	Message  string             `json:"message"`
}

type maxNumberRequest struct {
	MaxNumber flexString `json:"max_number"`
}

type maxNumberResponse struct {
	MaxNumber int    `json:"max_number"`
	Message   string `json:"message"`
}

type eliminatedResponse struct {
	Eliminated []roster.EliminatedStudent `json:"eliminated"`
}

type studentsResponse struct {
	Students []roster.Student `json:"students"`
}

type resultRequest struct {
	Result    string `json:"result"`
	TypedWord string `json:"typed_word,omitempty"`
}

type resultsResponse struct {
	Results []quiz.ResultRow `json:"results"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// flexString accepts a JSON string or number and keeps its text, so form-like
// values such as "5" and 5 validate the same way.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("expected a string or number")
	}
	*f = flexString(n.String())
	return nil
}

type importErrorResponse struct {
	Error string             `json:"error"`
	Rows  []roster.RowResult `json:"rows"`
}

type wordResponse struct {
	quiz.Assignment
	StudentID int64       `json:"student_id"`
	Status    quiz.Status `json:"status"`
}
