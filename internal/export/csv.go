package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"qcm-service/internal/domain"
)

const (
	// FullExportName is the file name of the admin export.
	FullExportName = "export_complet"
	// ContentTypeCSV is the MIME type served for CSV downloads.
	ContentTypeCSV = "text/csv; charset=utf-8"
)

// ResultColumns is the canonical header shared by every result sink and export.
var ResultColumns = []string{"date", "nom", "prenom", "score", "total", "percent"}

// PersonalFilename returns resultat_<lastname>_<firstname>.csv.
func PersonalFilename(rec domain.ResultRecord) string {
	return fmt.Sprintf("resultat_%s_%s.csv", fileSafe(rec.LastName), fileSafe(rec.FirstName))
}

// RecordValues renders a record in canonical column order.
func RecordValues(rec domain.ResultRecord) []string {
	return []string{
		rec.Timestamp,
		rec.LastName,
		rec.FirstName,
		strconv.Itoa(rec.Correct),
		strconv.Itoa(rec.Total),
		rec.PercentString(),
	}
}

// RecordFromValues parses canonical columns back into a record.
func RecordFromValues(values []string) (domain.ResultRecord, error) {
	if len(values) < len(ResultColumns) {
		return domain.ResultRecord{}, fmt.Errorf("expected %d columns, got %d", len(ResultColumns), len(values))
	}
	correct, err := strconv.Atoi(strings.TrimSpace(values[3]))
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("parse score: %w", err)
	}
	total, err := strconv.Atoi(strings.TrimSpace(values[4]))
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("parse total: %w", err)
	}
	percent, err := strconv.ParseFloat(strings.TrimSpace(values[5]), 64)
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("parse percent: %w", err)
	}
	return domain.ResultRecord{
		Timestamp: values[0],
		LastName:  values[1],
		FirstName: values[2],
		Correct:   correct,
		Total:     total,
		Percent:   percent,
	}, nil
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []domain.ResultRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(RecordValues(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PersonalCSV is the single-row export handed to a participant.
func PersonalCSV(rec domain.ResultRecord) ([]byte, error) {
	var b strings.Builder
	if err := WriteCSV(&b, []domain.ResultRecord{rec}); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// ReadCSV parses a CSV written by WriteCSV. A leading header row is skipped.
func ReadCSV(r io.Reader) ([]domain.ResultRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	records := make([]domain.ResultRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && IsHeader(row, ResultColumns) {
			continue
		}
		if BlankRow(row) {
			continue
		}
		rec, err := RecordFromValues(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// IsHeader reports whether row starts with the first canonical column name.
func IsHeader(row, columns []string) bool {
	if len(row) == 0 || len(columns) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff")), columns[0])
}

// BlankRow reports whether every cell is empty.
func BlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func fileSafe(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|', '\n', '\r', '\t':
			return '_'
		}
		return r
	}, s)
}
