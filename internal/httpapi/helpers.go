package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail(err, roster.ErrValidation)})
	case errors.Is(err, roster.ErrStudentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "student not found"})
	case errors.Is(err, quiz.ErrAlreadyResolved):
		writeJSON(w, http.StatusConflict, errorResponse{Error: errorDetail(err, quiz.ErrAlreadyResolved)})
	case errors.Is(err, roster.ErrImportFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Error processing CSV: " + errorDetail(err, roster.ErrImportFailed)})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// errorDetail strips the "<sentinel>: " prefix added by fmt.Errorf("%w: ...").
func errorDetail(err, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return detail
	}
	return msg
}

func pathStudentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, roster.ErrStudentNotFound
	}
	return id, nil
}

func pathNumber(r *http.Request) (int, error) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		return 0, errors.New("number must be an integer")
	}
	return number, nil
}

var errEmptyBody = errors.New("request body is required")

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
