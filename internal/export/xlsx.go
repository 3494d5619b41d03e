package export

import (
	"fmt"
	"io"

	"qcm-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// ContentTypeXLSX is the MIME type served for workbook downloads.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	resultsSheet    = "Resultats"
)

// WriteXLSX streams records into a single-sheet workbook.
func WriteXLSX(w io.Writer, records []domain.ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(resultsSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(ResultColumns))
	for i, col := range ResultColumns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Timestamp, rec.LastName, rec.FirstName, rec.Correct, rec.Total, rec.Percent}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Write(w)
}
