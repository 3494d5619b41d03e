// Package sheet stores results and questions in a local XLSX workbook, one
// worksheet per table, laid out like the shared spreadsheet the quiz was
// first run against: a header row, then one record per row.
package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	// ResultsSheet holds result records.
	ResultsSheet = "Resultats"
	// QuestionsSheet holds question rows.
	QuestionsSheet = "Questions"
)

// Workbook serializes every read and write of one XLSX file.
type Workbook struct {
	path string
	mu   sync.Mutex
}

func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// Path is the workbook location on disk.
func (w *Workbook) Path() string {
	return w.path
}

// AppendRow adds values after the last used row of sheet, creating the
// file, the sheet and its header as needed.
func (w *Workbook) AppendRow(sheet string, header []string, values []interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", sheet, err)
	}

	next := len(rows) + 1
	if len(rows) == 0 {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		next = 2
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", next, err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save %s: %w", w.path, err)
	}
	return nil
}

// Rows returns every row of sheet below the header. A missing file or sheet
// reads as empty.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", w.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func (w *Workbook) open() (*excelize.File, error) {
	if _, err := os.Stat(w.path); errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", w.path, err)
	}
	return f, nil
}

func ensureSheet(f *excelize.File, sheet string) error {
	idx, err := f.GetSheetIndex(sheet)
	if err == nil && idx >= 0 {
		return nil
	}
	// A fresh file only has the default sheet; take it over instead of leaving it empty.
	if list := f.GetSheetList(); len(list) == 1 && list[0] == "Sheet1" {
		return f.SetSheetName("Sheet1", sheet)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return nil
}
