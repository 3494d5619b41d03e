package app

import (
	"context"

	"qcm-service/internal/domain"
)

// QuestionSource abstracts where question rows live (static list, CSV, workbook, Postgres).
type QuestionSource interface {
	Rows(ctx context.Context) ([]domain.QuestionRow, error)
	AppendRow(ctx context.Context, row domain.QuestionRow) error
}

// QuestionRepository serves the validated question set (from cache/backing source).
type QuestionRepository interface {
	GetQuestionSet(ctx context.Context) (domain.QuestionSet, error)
	Invalidate(ctx context.Context) error
}

// ResultSink is the append-only store for result records.
type ResultSink interface {
	Append(ctx context.Context, rec domain.ResultRecord) error
	ReadAll(ctx context.Context) ([]domain.ResultRecord, error)
}

// SessionRepository abstracts how admin sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Get(ctx context.Context, id string) (domain.AdminSession, error)
	Save(ctx context.Context, session domain.AdminSession) error
	Delete(ctx context.Context, id string) error
}
