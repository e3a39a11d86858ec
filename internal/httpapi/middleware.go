package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const maxLoggedErrorBody = 512

// statusRecorder captures the status code and a bounded copy of the body for
// request logging.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	logBody      bytes.Buffer
	truncated    bool
	bytesWritten int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += n

	remaining := r.maxLogBytes - r.logBody.Len()
	switch {
	case remaining <= 0:
		if len(p) > 0 {
			r.truncated = true
		}
	case len(p) > remaining:
		r.logBody.Write(p[:remaining])
		r.truncated = true
	default:
		r.logBody.Write(p)
	}
	return n, err
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedErrorBody,
		}

		next.ServeHTTP(recorder, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"bytes", recorder.bytesWritten,
			"duration", time.Since(start),
		}
		if recorder.statusCode >= http.StatusInternalServerError {
			attrs = append(attrs, "body", recorder.logBody.String(), "truncated", recorder.truncated)
			a.logger.Error("request failed", attrs...)
			return
		}
		if recorder.statusCode >= http.StatusBadRequest {
			attrs = append(attrs, "body", recorder.logBody.String())
		}
		a.logger.Info("request", attrs...)
	})
}

// requireAdmin checks HTTP basic auth against the configured bcrypt hash. The
// user name is ignored.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.adminHash) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		_, password, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="spellbee admin"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "admin authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
