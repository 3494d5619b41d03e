package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinOptions is the smallest number of options a loaded question may have.
	MinOptions = 3
	// MaxOptions matches the option1..option4 columns of a question source.
	MaxOptions = 4
)

// RowResult is the outcome of validating one QuestionRow: either Question or Err is set.
type RowResult struct {
	Question Question
	Err      error
}

// OK reports whether the row produced a question.
func (r RowResult) OK() bool {
	return r.Err == nil
}

var (
	errMissingText    = errors.New("missing question text")
	errTooFewOptions  = fmt.Errorf("fewer than %d options", MinOptions)
	errOptionGap      = errors.New("empty option before a filled one")
	errCorrectNotInt  = errors.New("correct_option is not an integer")
	errCorrectOutside = errors.New("correct_option outside options")
)

// ParseRow validates a raw row into a Question.
func ParseRow(row QuestionRow) RowResult {
	text := strings.TrimSpace(row.Question)
	if text == "" {
		return RowResult{Err: errMissingText}
	}

	raw := []string{row.Option1, row.Option2, row.Option3, row.Option4}
	options := make([]string, 0, MaxOptions)
	gap := false
	for _, opt := range raw {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			gap = true
			continue
		}
		if gap {
			return RowResult{Err: errOptionGap}
		}
		options = append(options, opt)
	}
	if len(options) < MinOptions {
		return RowResult{Err: errTooFewOptions}
	}

	correct, err := strconv.Atoi(strings.TrimSpace(row.CorrectOption))
	if err != nil {
		return RowResult{Err: errCorrectNotInt}
	}
	if correct < 0 || correct >= len(options) {
		return RowResult{Err: errCorrectOutside}
	}
	return RowResult{Question: Question{Text: text, Options: options, CorrectOption: correct}}
}

// BuildQuestionSet validates every row and keeps the valid ones in order.
// Row numbers in Skipped are 1-based and exclude any header.
func BuildQuestionSet(rows []QuestionRow) QuestionSet {
	set := QuestionSet{Questions: make([]Question, 0, len(rows))}
	for i, row := range rows {
		res := ParseRow(row)
		if !res.OK() {
			set.Skipped = append(set.Skipped, SkippedRow{Row: i + 1, Reason: res.Err.Error()})
			continue
		}
		set.Questions = append(set.Questions, res.Question)
	}
	return set
}

// RowFromQuestion renders a Question back into a source row.
func RowFromQuestion(q Question) QuestionRow {
	opts := make([]string, MaxOptions)
	copy(opts, q.Options)
	return QuestionRow{
		Question:      q.Text,
		Option1:       opts[0],
		Option2:       opts[1],
		Option3:       opts[2],
		Option4:       opts[3],
		CorrectOption: strconv.Itoa(q.CorrectOption),
	}
}

// RowFromValues maps canonical columns onto a QuestionRow; missing trailing cells are empty.
func RowFromValues(values []string) QuestionRow {
	cells := make([]string, 6)
	copy(cells, values)
	return QuestionRow{
		Question:      cells[0],
		Option1:       cells[1],
		Option2:       cells[2],
		Option3:       cells[3],
		Option4:       cells[4],
		CorrectOption: cells[5],
	}
}

// QuestionColumns is the canonical header of a question source.
var QuestionColumns = []string{"question", "option1", "option2", "option3", "option4", "correct_option"}

// NewQuestion is the admin input for appending a question.
type NewQuestion struct {
	Text          string
	Options       [MaxOptions]string
	CorrectOption int
}

// Validate requires every text field and an answer index in 0..3.
func (n NewQuestion) Validate() error {
	if strings.TrimSpace(n.Text) == "" {
		return &ValidationError{Field: "question", Message: "question text is required"}
	}
	for i, opt := range n.Options {
		if strings.TrimSpace(opt) == "" {
			return &ValidationError{Field: fmt.Sprintf("option%d", i+1), Message: "all options are required"}
		}
	}
	if n.CorrectOption < 0 || n.CorrectOption >= MaxOptions {
		return &ValidationError{Field: "correct_option", Message: "answer index must be 0, 1, 2 or 3"}
	}
	return nil
}

// Row renders the new question as a source row.
func (n NewQuestion) Row() QuestionRow {
	return QuestionRow{
		Question:      strings.TrimSpace(n.Text),
		Option1:       strings.TrimSpace(n.Options[0]),
		Option2:       strings.TrimSpace(n.Options[1]),
		Option3:       strings.TrimSpace(n.Options[2]),
		Option4:       strings.TrimSpace(n.Options[3]),
		CorrectOption: strconv.Itoa(n.CorrectOption),
	}
}
