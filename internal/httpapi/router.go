package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(api *API) http.Handler {
	router := mux.NewRouter()
	router.Use(api.logRequests)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	router.HandleFunc("/healthz", api.HandleHealth).Methods(http.MethodGet)

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(api.requireAdmin)
	admin.HandleFunc("", api.HandleAdmin).Methods(http.MethodGet)
	admin.HandleFunc("/students", api.HandleAddStudent).Methods(http.MethodPost)
	admin.HandleFunc("/students/import", api.HandleImportStudents).Methods(http.MethodPost)
	admin.HandleFunc("/students/{id:[0-9]+}", api.HandleDeleteStudent).Methods(http.MethodDelete)
	admin.HandleFunc("/settings/max-number", api.HandleUpdateMaxNumber).Methods(http.MethodPut)
	admin.HandleFunc("/eliminated", api.HandleEliminated).Methods(http.MethodGet)

	router.HandleFunc("/students", api.HandleListStudents).Methods(http.MethodGet)
	router.HandleFunc("/students/{id:[0-9]+}/numbers", api.HandleNumberBoard).Methods(http.MethodGet)
	router.HandleFunc("/students/{id:[0-9]+}/numbers/{number:[0-9]+}/start", api.HandleStartQuiz).Methods(http.MethodPost)
	router.HandleFunc("/students/{id:[0-9]+}/numbers/{number:[0-9]+}/word", api.HandleWord).Methods(http.MethodGet)
	router.HandleFunc("/students/{id:[0-9]+}/numbers/{number:[0-9]+}/result", api.HandleResult).Methods(http.MethodPost)
	router.HandleFunc("/results", api.HandleResults).Methods(http.MethodGet)

	return router
}
