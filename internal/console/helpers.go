package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"spelling-bee/internal/quiz"
)

const boardColumns = 10

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  students")
	fmt.Fprintln(out, "  numbers <student_id>")
	fmt.Fprintln(out, "  play <student_id> <number>")
	fmt.Fprintln(out, "  results")
	fmt.Fprintln(out, "  exit")
}

func parseStudentID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return id, nil
}

func parseNumber(value string) (int, error) {
	number, err := strconv.Atoi(value)
	if err != nil || number <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return number, nil
}

// writeBoard prints numbers in rows; answered numbers carry a marker:
// "?" pending, "+" correct, "x" incorrect.
func writeBoard(out io.Writer, cards []quiz.NumberCard) {
	for idx, card := range cards {
		fmt.Fprintf(out, "%4d%s", card.Number, statusMarker(card.Status))
		if (idx+1)%boardColumns == 0 || idx == len(cards)-1 {
			fmt.Fprintln(out)
		}
	}
}

func statusMarker(status quiz.Status) string {
	switch status {
	case quiz.StatusPending:
		return "?"
	case quiz.StatusCorrect:
		return "+"
	case quiz.StatusIncorrect:
		return "x"
	default:
		return " "
	}
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, "Please answer yes or no.")
	}
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("spelling bee service unavailable at %s", serverURL)
	}
	return err
}
