package sheet

import (
	"context"

	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

// QuestionSource reads and appends rows of the Questions worksheet.
type QuestionSource struct {
	book *Workbook
}

func NewQuestionSource(book *Workbook) *QuestionSource {
	return &QuestionSource{book: book}
}

func (s *QuestionSource) Rows(_ context.Context) ([]domain.QuestionRow, error) {
	rows, err := s.book.Rows(QuestionsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuestionRow, 0, len(rows))
	for _, row := range rows {
		if export.BlankRow(row) {
			continue
		}
		out = append(out, domain.RowFromValues(row))
	}
	return out, nil
}

func (s *QuestionSource) AppendRow(_ context.Context, row domain.QuestionRow) error {
	values := make([]interface{}, 0, len(domain.QuestionColumns))
	for _, v := range row.Values() {
		values = append(values, v)
	}
	return s.book.AppendRow(QuestionsSheet, domain.QuestionColumns, values)
}
