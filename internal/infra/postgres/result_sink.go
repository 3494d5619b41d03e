package postgres

import (
	"context"
	"fmt"

	"qcm-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultSink appends records to the results table; reads return insertion order.
type ResultSink struct {
	pool *pgxpool.Pool
}

func NewResultSink(pool *pgxpool.Pool) *ResultSink {
	return &ResultSink{pool: pool}
}

func (s *ResultSink) Append(ctx context.Context, rec domain.ResultRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results ("date", nom, prenom, score, total, percent) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Timestamp, rec.LastName, rec.FirstName, rec.Correct, rec.Total, rec.Percent)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultSink) ReadAll(ctx context.Context) ([]domain.ResultRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT "date", nom, prenom, score, total, percent FROM results ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []domain.ResultRecord
	for rows.Next() {
		var rec domain.ResultRecord
		if err := rows.Scan(&rec.Timestamp, &rec.LastName, &rec.FirstName, &rec.Correct, &rec.Total, &rec.Percent); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
