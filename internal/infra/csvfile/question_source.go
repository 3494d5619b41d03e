package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

// QuestionSource reads question rows from a CSV file with the canonical
// header question,option1..option4,correct_option.
type QuestionSource struct {
	path string
	mu   sync.Mutex
}

func NewQuestionSource(path string) *QuestionSource {
	return &QuestionSource{path: path}
}

func (s *QuestionSource) Rows(_ context.Context) ([]domain.QuestionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	rows := make([]domain.QuestionRow, 0, len(records))
	for i, rec := range records {
		if i == 0 && export.IsHeader(rec, domain.QuestionColumns) {
			continue
		}
		if export.BlankRow(rec) {
			continue
		}
		rows = append(rows, domain.RowFromValues(rec))
	}
	return rows, nil
}

func (s *QuestionSource) AppendRow(_ context.Context, row domain.QuestionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRow(s.path, domain.QuestionColumns, row.Values())
}
