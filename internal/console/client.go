package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"

	"spelling-bee/internal/quiz"
	"spelling-bee/internal/roster"
)

var ErrServiceUnavailable = errors.New("spelling bee service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the quiz routes of the server. It keeps the session
// cookie between calls so answered numbers are remembered.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type studentsResponse struct {
	Students []roster.Student `json:"students"`
}

type wordItem struct {
	quiz.Assignment
	StudentID int64       `json:"student_id"`
	Status    quiz.Status `json:"status"`
}

type resultRequest struct {
	Result    string `json:"result"`
	TypedWord string `json:"typed_word,omitempty"`
}

type resultsResponse struct {
	Results []quiz.ResultRow `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		httpClient.Jar = jar
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) ListStudents(ctx context.Context) ([]roster.Student, error) {
	var payload studentsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/students", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Students, nil
}

func (c *HTTPClient) NumberBoard(ctx context.Context, studentID int64) (quiz.NumberBoard, error) {
	var board quiz.NumberBoard
	err := c.doJSON(ctx, http.MethodGet, studentPath(studentID)+"/numbers", nil, &board)
	return board, err
}

func (c *HTTPClient) StartQuiz(ctx context.Context, studentID int64, number int) (wordItem, error) {
	var item wordItem
	err := c.doJSON(ctx, http.MethodPost, numberPath(studentID, number)+"/start", nil, &item)
	return item, err
}

func (c *HTTPClient) SubmitResult(ctx context.Context, studentID int64, number int, correct bool, typedWord string) (quiz.Outcome, error) {
	request := resultRequest{Result: "incorrect", TypedWord: typedWord}
	if correct {
		request.Result = quiz.ResultCorrect
	}

	var outcome quiz.Outcome
	err := c.doJSON(ctx, http.MethodPost, numberPath(studentID, number)+"/result", request, &outcome)
	return outcome, err
}

func (c *HTTPClient) Results(ctx context.Context) ([]quiz.ResultRow, error) {
	var payload resultsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/results", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func studentPath(studentID int64) string {
	return "/students/" + strconv.FormatInt(studentID, 10)
}

func numberPath(studentID int64, number int) string {
	return studentPath(studentID) + "/numbers/" + strconv.Itoa(number)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
