package sheet

import (
	"context"
	"fmt"

	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

// ResultSink appends records to the Resultats worksheet.
type ResultSink struct {
	book *Workbook
}

func NewResultSink(book *Workbook) *ResultSink {
	return &ResultSink{book: book}
}

func (s *ResultSink) Append(_ context.Context, rec domain.ResultRecord) error {
	values := []interface{}{rec.Timestamp, rec.LastName, rec.FirstName, rec.Correct, rec.Total, rec.Percent}
	return s.book.AppendRow(ResultsSheet, export.ResultColumns, values)
}

func (s *ResultSink) ReadAll(_ context.Context) ([]domain.ResultRecord, error) {
	rows, err := s.book.Rows(ResultsSheet)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ResultRecord, 0, len(rows))
	for i, row := range rows {
		if export.BlankRow(row) {
			continue
		}
		rec, err := export.RecordFromValues(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ResultsSheet, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
