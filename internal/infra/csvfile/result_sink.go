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

// ResultSink appends records to a local CSV file, opening and closing it per
// write. Appends are serialized within the process only; there is no file
// locking across processes.
type ResultSink struct {
	path string
	mu   sync.Mutex
}

func NewResultSink(path string) *ResultSink {
	return &ResultSink{path: path}
}

func (s *ResultSink) Append(_ context.Context, rec domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRow(s.path, export.ResultColumns, export.RecordValues(rec))
}

func (s *ResultSink) ReadAll(_ context.Context) ([]domain.ResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()
	return export.ReadCSV(f)
}

// appendRow writes header first when the file is new or empty.
func appendRow(path string, header, values []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(values); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
