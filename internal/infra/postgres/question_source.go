package postgres

import (
	"context"
	"fmt"

	"qcm-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionSource reads and appends rows of the questions table.
// Columns are kept as text so malformed rows reach validation instead of failing the scan.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

func (s *QuestionSource) Rows(ctx context.Context) ([]domain.QuestionRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT question, option1, option2, option3, option4, correct_option FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []domain.QuestionRow
	for rows.Next() {
		var row domain.QuestionRow
		if err := rows.Scan(&row.Question, &row.Option1, &row.Option2, &row.Option3, &row.Option4, &row.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *QuestionSource) AppendRow(ctx context.Context, row domain.QuestionRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO questions (question, option1, option2, option3, option4, correct_option) VALUES ($1, $2, $3, $4, $5, $6)`,
		row.Question, row.Option1, row.Option2, row.Option3, row.Option4, row.CorrectOption)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}
