// Package form fills a rendered questionnaire from a list of answers and
// submits it.
package form

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Answer pairs a question label with the value to enter.
type Answer struct {
	Label string
	Value string
}

// LoadAnswers reads two-column CSV: question label, answer value. The header
// row is skipped, as are rows with fewer than two columns or a blank label.
// Duplicate labels are kept in source order.
func LoadAnswers(r io.Reader) ([]Answer, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var answers []Answer
	header := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read answers: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 2 {
			continue
		}
		label := strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff"))
		if label == "" {
			continue
		}
		answers = append(answers, Answer{Label: label, Value: strings.TrimSpace(row[1])})
	}
	return answers, nil
}

// LoadAnswersFile reads answers from a CSV file.
func LoadAnswersFile(path string) ([]Answer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open answers: %w", err)
	}
	defer f.Close()
	return LoadAnswers(f)
}
