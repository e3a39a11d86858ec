package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
)

// Run reads commands from in until "exit" or EOF.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "spelling bee\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil && strings.TrimSpace(line) == "" {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return readErr
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var cmdErr error
		switch strings.ToLower(args[0]) {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "students":
			cmdErr = runStudents(ctx, out, client)
		case "numbers":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: numbers <student_id>")
				continue
			}
			studentID, parseErr := parseStudentID(args[1])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid student id: %v\n", parseErr)
				continue
			}
			cmdErr = runNumbers(ctx, out, client, studentID)
		case "play":
			if len(args) != 3 {
				fmt.Fprintln(out, "usage: play <student_id> <number>")
				continue
			}
			studentID, parseErr := parseStudentID(args[1])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid student id: %v\n", parseErr)
				continue
			}
			number, parseErr := parseNumber(args[2])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid number: %v\n", parseErr)
				continue
			}
			cmdErr = runPlay(ctx, reader, out, client, studentID, number)
		case "results":
			cmdErr = runResults(ctx, out, client)
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}

		if cmdErr != nil {
			if isNotFound(cmdErr) {
				fmt.Fprintln(out, "Student not found.")
				cmdErr = runStudents(ctx, out, client)
			}
			if cmdErr != nil {
				fmt.Fprintf(out, "error: %v\n", describeClientError(cmdErr, serverURL))
			}
		}
		if readErr != nil {
			// Last line had no trailing newline.
			fmt.Fprintln(out)
			return nil
		}
	}
}

func runStudents(ctx context.Context, out io.Writer, client *HTTPClient) error {
	students, err := client.ListStudents(ctx)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		fmt.Fprintln(out, "No students in the roster.")
		return nil
	}

	fmt.Fprintln(out, "Students:")
	for _, s := range students {
		fmt.Fprintf(out, "%4d  %s (%s) points=%d\n", s.ID, s.Name, s.School, s.Points)
	}
	return nil
}

func runNumbers(ctx context.Context, out io.Writer, client *HTTPClient, studentID int64) error {
	board, err := client.NumberBoard(ctx, studentID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s) points=%d\n", board.Student.Name, board.Student.School, board.Student.Points)
	writeBoard(out, board.Cards)
	return nil
}

func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, studentID int64, number int) error {
	item, err := client.StartQuiz(ctx, studentID, number)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Number %d, word %d of %d: %s\n", item.Number, item.Position, item.Total, item.Word)
	fmt.Fprint(out, "Typed word (optional): ")
	typed, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	correct, err := promptYesNo(reader, out, "Was it spelled correctly? (yes/no): ")
	if err != nil {
		return err
	}

	outcome, err := client.SubmitResult(ctx, studentID, number, correct, strings.TrimSpace(typed))
	if err != nil {
		return err
	}

	if correct {
		successColor.Fprintln(out, outcome.Message)
		return nil
	}
	failureColor.Fprintln(out, outcome.Message)
	return runStudents(ctx, out, client)
}

func runResults(ctx context.Context, out io.Writer, client *HTTPClient) error {
	rows, err := client.Results(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No students in the roster.")
		return nil
	}

	fmt.Fprintln(out, "Results:")
	for idx, row := range rows {
		fmt.Fprintf(out, "%d. %s (%s) points=%d words=%d\n", idx+1, row.Name, row.School, row.Points, row.Total)
	}
	return nil
}
