package app

import (
	"context"
	"log"
	"strings"
	"time"

	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

// QuizService contains the participant use cases: render, score, record.
type QuizService struct {
	questions QuestionRepository
	sink      ResultSink
	feed      *ResultFeed
	now       func() time.Time
}

func NewQuizService(questions QuestionRepository, sink ResultSink, feed *ResultFeed) *QuizService {
	return NewQuizServiceWithClock(questions, sink, feed, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(questions QuestionRepository, sink ResultSink, feed *ResultFeed, now func() time.Time) *QuizService {
	return &QuizService{questions: questions, sink: sink, feed: feed, now: now}
}

// SubmitOutcome is what the participant sees after a valid submission.
// SaveErr is set when the sink rejected the record; the export is still offered.
type SubmitOutcome struct {
	Record     domain.ResultRecord
	Saved      bool
	SaveErr    error
	Export     []byte
	ExportName string
}

// QuestionSet returns the active question set. An empty set is not an error here;
// callers render the "no questions" state from it.
func (s *QuizService) QuestionSet(ctx context.Context) (domain.QuestionSet, error) {
	return s.questions.GetQuestionSet(ctx)
}

// Submit validates identity fields, scores the answers, appends the record and
// builds the personal export. A sink failure degrades to SaveErr instead of an error.
func (s *QuizService) Submit(ctx context.Context, sub domain.Submission) (SubmitOutcome, error) {
	set, err := s.questions.GetQuestionSet(ctx)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if set.Empty() {
		return SubmitOutcome{}, domain.ErrNoQuestions
	}
	if err := validateIdentity(sub); err != nil {
		return SubmitOutcome{}, err
	}

	score := domain.ScoreSubmission(set.Questions, sub.Selected)
	record := domain.ResultRecord{
		Timestamp: s.now().Format(domain.TimestampLayout),
		FirstName: strings.TrimSpace(sub.FirstName),
		LastName:  strings.TrimSpace(sub.LastName),
		Correct:   score.Correct,
		Total:     score.Total,
		Percent:   score.Percent,
	}

	outcome := SubmitOutcome{Record: record, ExportName: export.PersonalFilename(record)}
	if err := s.sink.Append(ctx, record); err != nil {
		log.Printf("result save failed for %s %s: %v", record.FirstName, record.LastName, err)
		outcome.SaveErr = err
	} else {
		outcome.Saved = true
		if s.feed != nil {
			s.feed.Publish(record)
		}
	}

	data, err := export.PersonalCSV(record)
	if err != nil {
		return outcome, err
	}
	outcome.Export = data
	return outcome, nil
}

func validateIdentity(sub domain.Submission) error {
	if strings.TrimSpace(sub.FirstName) == "" {
		return &domain.ValidationError{Field: "first_name", Message: "first name is required"}
	}
	if strings.TrimSpace(sub.LastName) == "" {
		return &domain.ValidationError{Field: "last_name", Message: "last name is required"}
	}
	return nil
}
