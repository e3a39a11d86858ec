package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
	"spelling-bee/internal/roster/sqlite"
)

type testServer struct {
	handler  http.Handler
	roster   *roster.Service
	sessions *quiz.SessionStore
	cookies  []*http.Cookie
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	store, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if opts.SessionSecret == nil {
		opts.SessionSecret = []byte("test-secret")
	}

	svc := roster.NewService(store)
	ctrl := quiz.NewController(svc, quiz.DefaultWordList(), nil)
	sessions := quiz.NewSessionStore(time.Hour)
	api := NewAPI(svc, ctrl, sessions, opts)
	return &testServer{handler: NewRouter(api), roster: svc, sessions: sessions}
}

// do sends a request with the cookies collected so far, like a browser would.
func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	res := httptest.NewRecorder()
	s.handler.ServeHTTP(res, req)
	if issued := res.Result().Cookies(); len(issued) > 0 {
		s.cookies = issued
	}
	return res
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, body, "application/json")
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out), res.Body.String())
	return out
}

func multipartCSV(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestAddStudentAndAdminView(t *testing.T) {
	srv := newTestServer(t, Options{})

	res := srv.doJSON(t, http.MethodPost, "/admin/students", map[string]any{"name": "Ann", "school": "Hay", "points": 5})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	created := decodeBody[studentResponse](t, res)
	assert.Equal(t, "Student added successfully", created.Message)
	assert.Equal(t, 5, created.Student.Points)

	res = srv.doJSON(t, http.MethodPost, "/admin/students", map[string]any{"name": "Bo", "school": "Hay", "points": "many"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.JSONEq(t, `{"error":"Points must be an integer"}`, res.Body.String())

	res = srv.doJSON(t, http.MethodPost, "/admin/students", map[string]any{"name": "", "school": "Hay"})
	assert.JSONEq(t, `{"error":"Student name and school are required"}`, res.Body.String())

	res = srv.do(t, http.MethodPost, "/admin/students", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = srv.do(t, http.MethodGet, "/admin", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	view := decodeBody[adminResponse](t, res)
	assert.Equal(t, roster.DefaultMaxNumber, view.MaxNumber)
	require.Len(t, view.Students, 1)
	assert.Equal(t, "Ann", view.Students[0].Name)
}

func TestImportStudents(t *testing.T) {
	srv := newTestServer(t, Options{})

	body, contentType := multipartCSV(t, "csv_file", "roster.csv", "Alice,Lincoln,5\n,X,3\nBob,Hay\n")
	res := srv.do(t, http.MethodPost, "/admin/students/import", body, contentType)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	imported := decodeBody[importResponse](t, res)
	assert.Equal(t, 2, imported.Imported)
	assert.Equal(t, "2 students added successfully", imported.Message)
	require.Len(t, imported.Rows, 3)
	assert.Equal(t, roster.RowSkipped, imported.Rows[1].Status)

	body, contentType = multipartCSV(t, "other", "roster.csv", "Alice,Lincoln\n")
	res = srv.do(t, http.MethodPost, "/admin/students/import", body, contentType)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.JSONEq(t, `{"error":"No file selected"}`, res.Body.String())

	body, contentType = multipartCSV(t, "csv_file", "broken.csv", "Carl,Hay\nDee,\"Hay\n")
	res = srv.do(t, http.MethodPost, "/admin/students/import", body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.True(t, strings.HasPrefix(decodeBody[errorResponse](t, res).Error, "Error processing CSV: "))

	body, contentType = multipartCSV(t, "csv_file", "strict.csv", "Carl,Hay\nDee\n")
	res = srv.do(t, http.MethodPost, "/admin/students/import?policy=strict", body, contentType)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	rejected := decodeBody[importErrorResponse](t, res)
	assert.Contains(t, rejected.Error, "row 2")
	assert.Len(t, rejected.Rows, 2)

	students, err := srv.roster.ListStudents(context.Background(), roster.OrderName)
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestImportStudentsRejectsOversizedUpload(t *testing.T) {
	srv := newTestServer(t, Options{MaxUploadBytes: 512})

	body, contentType := multipartCSV(t, "csv_file", "big.csv", strings.Repeat("Alice,Lincoln,5\n", 100))
	res := srv.do(t, http.MethodPost, "/admin/students/import", body, contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
	assert.JSONEq(t, `{"error":"CSV upload exceeds 512 bytes"}`, res.Body.String())

	students, err := srv.roster.ListStudents(context.Background(), roster.OrderName)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestUpdateMaxNumber(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, value := range []any{0, -5, "ten"} {
		res := srv.doJSON(t, http.MethodPut, "/admin/settings/max-number", map[string]any{"max_number": value})
		assert.Equal(t, http.StatusBadRequest, res.Code, "value %v", value)
	}

	res := srv.doJSON(t, http.MethodPut, "/admin/settings/max-number", map[string]any{"max_number": "12"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"max_number":12,"message":"Maximum number updated successfully"}`, res.Body.String())
}

func TestDeleteStudent(t *testing.T) {
	srv := newTestServer(t, Options{})
	ann, err := srv.roster.AddStudent(context.Background(), "Ann", "Hay", "")
	require.NoError(t, err)

	res := srv.do(t, http.MethodDelete, "/admin/students/999", nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = srv.do(t, http.MethodDelete, "/admin/students/"+itoa(ann.ID), nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"message":"Student deleted"}`, res.Body.String())
}

func TestQuizFlowEliminatesOnIncorrect(t *testing.T) {
	srv := newTestServer(t, Options{})
	sam, err := srv.roster.AddStudent(context.Background(), "Sam", "Lincoln", "3")
	require.NoError(t, err)
	base := "/students/" + itoa(sam.ID) + "/numbers"

	res := srv.do(t, http.MethodPost, base+"/7/start", nil, "")
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	require.NotEmpty(t, srv.cookies)
	started := decodeBody[wordResponse](t, res)
	assert.Equal(t, "banana", started.Word)
	assert.Equal(t, quiz.StatusPending, started.Status)

	res = srv.do(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	board := decodeBody[quiz.NumberBoard](t, res)
	assert.Equal(t, quiz.StatusPending, board.Cards[6].Status)

	res = srv.doJSON(t, http.MethodPost, base+"/7/result", resultRequest{Result: "incorrect", TypedWord: "bananna"})
	require.Equal(t, http.StatusOK, res.Code)
	outcome := decodeBody[quiz.Outcome](t, res)
	assert.Equal(t, "Sam is eliminated!", outcome.Message)

	res = srv.do(t, http.MethodGet, "/admin/eliminated", nil, "")
	eliminated := decodeBody[eliminatedResponse](t, res)
	require.Len(t, eliminated.Eliminated, 1)
	assert.Equal(t, 3, eliminated.Eliminated[0].Points)

	res = srv.do(t, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestQuizFlowCorrectAndConflict(t *testing.T) {
	srv := newTestServer(t, Options{})
	ann, err := srv.roster.AddStudent(context.Background(), "Ann", "Hay", "0")
	require.NoError(t, err)
	base := "/students/" + itoa(ann.ID) + "/numbers/2"

	res := srv.do(t, http.MethodPost, base+"/start", nil, "")
	require.Equal(t, http.StatusOK, res.Code)

	res = srv.do(t, http.MethodPost, base+"/result", strings.NewReader("result=correct"), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "Ann answered correctly! +1 point", decodeBody[quiz.Outcome](t, res).Message)

	res = srv.doJSON(t, http.MethodPost, base+"/result", resultRequest{Result: "correct"})
	assert.Equal(t, http.StatusConflict, res.Code)

	res = srv.do(t, http.MethodGet, base+"/word", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, quiz.StatusCorrect, decodeBody[wordResponse](t, res).Status)

	res = srv.do(t, http.MethodGet, "/results", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []quiz.ResultRow{{Name: "Ann", School: "Hay", Points: 1, Total: 1}}, decodeBody[resultsResponse](t, res).Results)

	// A client without the cookie gets its own empty session.
	srv.cookies = nil
	res = srv.do(t, http.MethodGet, base+"/word", nil, "")
	assert.Equal(t, quiz.StatusUnseen, decodeBody[wordResponse](t, res).Status)
}

func TestReadOnlyRoutesDoNotCreateSessions(t *testing.T) {
	srv := newTestServer(t, Options{})
	ann, err := srv.roster.AddStudent(context.Background(), "Ann", "Hay", "0")
	require.NoError(t, err)
	base := "/students/" + itoa(ann.ID) + "/numbers"

	for _, path := range []string{"/results", base, base + "/4/word"} {
		res := srv.do(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, res.Code, path)
		assert.Empty(t, res.Result().Cookies(), path)
	}
	assert.Equal(t, 0, srv.sessions.Len())

	res := srv.do(t, http.MethodPost, base+"/4/start", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, srv.cookies)
	assert.Equal(t, 1, srv.sessions.Len())

	res = srv.do(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, quiz.StatusPending, decodeBody[quiz.NumberBoard](t, res).Cards[3].Status)
	assert.Equal(t, 1, srv.sessions.Len())
}

func TestStartQuizOutOfRange(t *testing.T) {
	srv := newTestServer(t, Options{})
	ann, err := srv.roster.AddStudent(context.Background(), "Ann", "Hay", "0")
	require.NoError(t, err)

	res := srv.do(t, http.MethodPost, "/students/"+itoa(ann.ID)+"/numbers/101/start", nil, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = srv.do(t, http.MethodPost, "/students/999/numbers/1/start", nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestAdminRoutesRequirePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	srv := newTestServer(t, Options{AdminPasswordHash: string(hash)})

	res := srv.do(t, http.MethodGet, "/admin", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.NotEmpty(t, res.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "letmein")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	res = srv.do(t, http.MethodGet, "/students", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestSessionCodecRejectsForeignTokens(t *testing.T) {
	codec := sessionCodec{secret: []byte("one")}
	token, err := codec.encode("abc")
	require.NoError(t, err)

	sid, err := codec.decode(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)

	_, err = sessionCodec{secret: []byte("two")}.decode(token)
	assert.Error(t, err)

	_, err = codec.decode(token + "x")
	assert.Error(t, err)
}

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var request addStudentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"points": 7}`), &request))
	assert.Equal(t, flexString("7"), request.Points)

	require.NoError(t, json.Unmarshal([]byte(`{"points": " 8 "}`), &request))
	assert.Equal(t, flexString(" 8 "), request.Points)

	require.NoError(t, json.Unmarshal([]byte(`{"points": null}`), &request))
	assert.Equal(t, flexString(""), request.Points)

	assert.Error(t, json.Unmarshal([]byte(`{"points": true}`), &request))
}

func TestErrorDetail(t *testing.T) {
	err := roster.ErrStudentNotFound
	assert.Equal(t, "student not found", errorDetail(err, roster.ErrValidation))
}
