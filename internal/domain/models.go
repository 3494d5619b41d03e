package domain

import (
	"strconv"
	"time"
)

// Unanswered marks a selection that could not be resolved to an option.
// It never equals a valid option index, so it always scores as wrong.
const Unanswered = -1

// TimestampLayout is the layout of ResultRecord.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// QuestionSet is the ordered, read-only list of questions for a quiz session.
type QuestionSet struct {
	Questions []Question   `json:"questions"`
	Skipped   []SkippedRow `json:"skipped,omitempty"`
}

// Empty reports whether the set has no question to render.
func (s QuestionSet) Empty() bool {
	return len(s.Questions) == 0
}

// QuestionRow is one raw row of a question source, before validation.
type QuestionRow struct {
	Question      string
	Option1       string
	Option2       string
	Option3       string
	Option4       string
	CorrectOption string
}

// Values returns the row in canonical column order.
func (r QuestionRow) Values() []string {
	return []string{r.Question, r.Option1, r.Option2, r.Option3, r.Option4, r.CorrectOption}
}

// SkippedRow records a source row dropped during loading.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Submission is one participant's answers before scoring.
type Submission struct {
	FirstName string
	LastName  string
	// Selected holds one option index per question, in question order.
	Selected []int
}

// ResultRecord is the persisted outcome of one scored submission.
type ResultRecord struct {
	Timestamp string  `json:"timestamp"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// PercentString formats Percent with exactly one decimal.
func (r ResultRecord) PercentString() string {
	return strconv.FormatFloat(r.Percent, 'f', 1, 64)
}

// Score summarizes a scored submission.
type Score struct {
	Correct int
	Total   int
	Percent float64
}

// ScoreSubmission counts positions where the selected index matches the
// correct option. Missing selections count as Unanswered.
func ScoreSubmission(questions []Question, selected []int) Score {
	correct := 0
	for i, q := range questions {
		choice := Unanswered
		if i < len(selected) {
			choice = selected[i]
		}
		if choice != Unanswered && choice == q.CorrectOption {
			correct++
		}
	}
	total := len(questions)
	return Score{Correct: correct, Total: total, Percent: Percent(correct, total)}
}

// Percent returns correct/total*100 rounded to one decimal, or 0 when total is 0.
func Percent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(correct) / float64(total) * 100)
}

// Round1 rounds to one decimal place from the exact binary value, with
// exact ties going to the even digit.
func Round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

// GateState is the admin gate state of one session.
type GateState string

const (
	Locked   GateState = "locked"
	Unlocked GateState = "unlocked"
)

// AdminSession carries the gate state for one browser session.
type AdminSession struct {
	ID        string    `json:"id"`
	State     GateState `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsUnlocked reports whether the session passed the password gate.
func (s AdminSession) IsUnlocked() bool {
	return s.State == Unlocked
}
