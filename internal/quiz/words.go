package quiz

import (
	"errors"
	"strings"
)

var DefaultWords = []string{"apple", "banana", "cherry", "date", "elephant"}

var ErrEmptyWordList = errors.New("word list is empty")

// WordList maps numbers onto a fixed ordered list of spelling words.
type WordList struct {
	words []string
}

func NewWordList(words []string) (WordList, error) {
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		if word = strings.TrimSpace(word); word != "" {
			cleaned = append(cleaned, word)
		}
	}
	if len(cleaned) == 0 {
		return WordList{}, ErrEmptyWordList
	}
	return WordList{words: cleaned}, nil
}

func DefaultWordList() WordList {
	list, _ := NewWordList(DefaultWords)
	return list
}

func (l WordList) Len() int {
	return len(l.words)
}

// WordFor returns words[(n-1) mod len]. The same number always yields the same
// word and numbers past the end of the list wrap around.
func (l WordList) WordFor(n int) string {
	if len(l.words) == 0 {
		return ""
	}
	idx := (n - 1) % len(l.words)
	if idx < 0 {
		idx += len(l.words)
	}
	return l.words[idx]
}

// Assignment is what a student sees after picking a number.
type Assignment struct {
	Number   int    `json:"number"`
	Word     string `json:"word"`
	Total    int    `json:"total"`
	Position int    `json:"position"`
}

func (l WordList) Assign(number int) Assignment {
	return Assignment{
		Number: number,
		Word:   l.WordFor(number),
		Total:  l.Len(),
		// Only one word is ever drawn per number.
		Position: 1,
	}
}
