package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"qcm-service/internal/domain"
)

// Report is the admin view of all recorded results.
type Report struct {
	Records []domain.ResultRecord
	Tally
}

// Empty reports whether no result has been recorded yet.
func (r Report) Empty() bool {
	return len(r.Records) == 0
}

// Tally is the running aggregate over result records: mean percent rounded to
// one decimal and max correct count.
type Tally struct {
	Count       int     `json:"count"`
	MeanPercent float64 `json:"meanPercent"`
	MaxCorrect  int     `json:"maxCorrect"`
	sum         float64
}

// Add folds one record into the tally.
func (t *Tally) Add(rec domain.ResultRecord) {
	if t.Count == 0 || rec.Correct > t.MaxCorrect {
		t.MaxCorrect = rec.Correct
	}
	t.Count++
	t.sum += rec.Percent
	t.MeanPercent = domain.Round1(t.sum / float64(t.Count))
}

// Summarize computes the report over records.
func Summarize(records []domain.ResultRecord) Report {
	report := Report{Records: records}
	for _, rec := range records {
		report.Add(rec)
	}
	return report
}

// AdminService holds the reporting and question-management use cases.
// Every call is checked against the gate first.
type AdminService struct {
	gate      *AdminGate
	sink      ResultSink
	source    QuestionSource
	questions QuestionRepository
}

func NewAdminService(gate *AdminGate, sink ResultSink, source QuestionSource, questions QuestionRepository) *AdminService {
	return &AdminService{gate: gate, sink: sink, source: source, questions: questions}
}

// Results reads every record and summarizes them.
func (s *AdminService) Results(ctx context.Context, sessionID string) (Report, error) {
	if err := s.gate.Authorize(ctx, sessionID); err != nil {
		return Report{}, err
	}
	records, err := s.sink.ReadAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read results: %w", err)
	}
	return Summarize(records), nil
}

// SearchQuestions returns source rows whose question text contains term, case-insensitively.
// An empty term matches nothing.
func (s *AdminService) SearchQuestions(ctx context.Context, sessionID, term string) ([]domain.QuestionRow, error) {
	if err := s.gate.Authorize(ctx, sessionID); err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	rows, err := s.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var matches []domain.QuestionRow
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Question), term) {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

// AddQuestion validates and appends a question row, then drops the cached set.
// Once the row is stored the call succeeds even if the cache cannot be dropped.
func (s *AdminService) AddQuestion(ctx context.Context, sessionID string, q domain.NewQuestion) error {
	if err := s.gate.Authorize(ctx, sessionID); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	if err := s.source.AppendRow(ctx, q.Row()); err != nil {
		return fmt.Errorf("append question: %w", err)
	}
	if err := s.questions.Invalidate(ctx); err != nil {
		log.Printf("question cache invalidation failed, stale set kept until ttl: %v", err)
	}
	return nil
}
