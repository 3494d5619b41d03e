package app

import (
	"context"
	"fmt"
	"log"

	"qcm-service/internal/domain"
)

// SourceLoader validates the rows of a QuestionSource into a QuestionSet.
type SourceLoader struct {
	source QuestionSource
}

func NewSourceLoader(source QuestionSource) *SourceLoader {
	return &SourceLoader{source: source}
}

// LoadQuestions reads every row and drops the malformed ones.
func (l *SourceLoader) LoadQuestions(ctx context.Context) (domain.QuestionSet, error) {
	rows, err := l.source.Rows(ctx)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("load question rows: %w", err)
	}
	set := domain.BuildQuestionSet(rows)
	for _, skipped := range set.Skipped {
		log.Printf("skipped question row %d: %s", skipped.Row, skipped.Reason)
	}
	return set, nil
}
