package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"spelling-bee/internal/roster"
)

func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

// HandleAdmin returns the leaderboard and the current max_number.
func (a *API) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	students, err := a.roster.ListStudents(r.Context(), roster.OrderLeaderboard)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	maxNumber, err := a.roster.MaxNumber(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminResponse{MaxNumber: maxNumber, Students: students})
}

func (a *API) HandleAddStudent(w http.ResponseWriter, r *http.Request) {
	var request addStudentRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	student, err := a.roster.AddStudent(r.Context(), request.Name, request.School, string(request.Points))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, studentResponse{Student: student, Message: "Student added successfully"})
}

// HandleImportStudents reads the multipart field csv_file. The policy query
// parameter overrides the configured import policy.
func (a *API) HandleImportStudents(w http.ResponseWriter, r *http.Request) {
	policy := a.importPolicy
	if raw := strings.TrimSpace(r.URL.Query().Get("policy")); raw != "" {
		parsed, err := roster.ParseImportPolicy(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		policy = parsed
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	file, header, err := r.FormFile("csv_file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: fmt.Sprintf("CSV upload exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	if err != nil || header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file selected"})
		return
	}
	defer file.Close()

	result, err := a.roster.ImportCSV(r.Context(), file, policy)
	if err != nil {
		if errors.Is(err, roster.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, importErrorResponse{
				Error: errorDetail(err, roster.ErrValidation),
				Rows:  result.Rows,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	a.logger.Info("students imported",
		"file", header.Filename,
		"policy", string(policy),
		"imported", result.Imported,
		"rows", len(result.Rows),
	)
	writeJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Rows:     result.Rows,
		Message:  result.Message(),
	})
}

func (a *API) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathStudentID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.roster.DeleteStudent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Student deleted"})
}

func (a *API) HandleUpdateMaxNumber(w http.ResponseWriter, r *http.Request) {
	var request maxNumberRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := a.roster.UpdateMaxNumberText(r.Context(), string(request.MaxNumber)); err != nil {
		writeServiceError(w, err)
		return
	}
	maxNumber, err := a.roster.MaxNumber(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, maxNumberResponse{MaxNumber: maxNumber, Message: "Maximum number updated successfully"})
}

func (a *API) HandleEliminated(w http.ResponseWriter, r *http.Request) {
	eliminated, err := a.roster.ListEliminated(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eliminatedResponse{Eliminated: eliminated})
}
