package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"spelling-bee/internal/roster"
)

func (a *API) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := a.roster.ListStudents(r.Context(), roster.OrderName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, studentsResponse{Students: students})
}

func (a *API) HandleNumberBoard(w http.ResponseWriter, r *http.Request) {
	id, err := pathStudentID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sess := a.readSession(r)

	board, err := a.quiz.ChooseNumber(r.Context(), sess, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) HandleStartQuiz(w http.ResponseWriter, r *http.Request) {
	id, number, ok := a.studentAndNumber(w, r)
	if !ok {
		return
	}
	sess, err := a.session(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	assignment, err := a.quiz.StartQuiz(r.Context(), sess, id, number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wordResponse{Assignment: assignment, StudentID: id, Status: sess.Status(number)})
}

func (a *API) HandleWord(w http.ResponseWriter, r *http.Request) {
	id, number, ok := a.studentAndNumber(w, r)
	if !ok {
		return
	}
	sess := a.readSession(r)

	assignment, err := a.quiz.Word(r.Context(), id, number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wordResponse{Assignment: assignment, StudentID: id, Status: sess.Status(number)})
}

// HandleResult accepts {"result": "correct"|"incorrect"} as JSON or a form
// field. Anything other than "correct", including a missing value, counts as
// incorrect.
func (a *API) HandleResult(w http.ResponseWriter, r *http.Request) {
	id, number, ok := a.studentAndNumber(w, r)
	if !ok {
		return
	}

	request, err := decodeResultRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	sess, err := a.session(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if request.TypedWord != "" {
		a.logger.Debug("typed word received", "student_id", id, "number", number, "typed_word", request.TypedWord)
	}

	outcome, err := a.quiz.ResolveWord(r.Context(), sess, id, number, request.Result)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (a *API) HandleResults(w http.ResponseWriter, r *http.Request) {
	sess := a.readSession(r)

	rows, err := a.quiz.Results(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: rows})
}

func (a *API) studentAndNumber(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	id, err := pathStudentID(r)
	if err != nil {
		writeServiceError(w, err)
		return 0, 0, false
	}
	number, err := pathNumber(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return 0, 0, false
	}
	return id, number, true
}

func decodeResultRequest(r *http.Request) (resultRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return resultRequest{
			Result:    r.PostFormValue("result"),
			TypedWord: r.PostFormValue("typed_word"),
		}, nil
	}

	var request resultRequest
	err := decodeJSON(r, &request)
	if err != nil && !errors.Is(err, errEmptyBody) {
		return resultRequest{}, err
	}
	return request, nil
}
