package memory

import (
	"context"
	"sync"

	"qcm-service/internal/domain"
)

// ResultSink keeps records in process memory; contents are lost on restart.
type ResultSink struct {
	mu      sync.RWMutex
	records []domain.ResultRecord
	// Err, when set, is returned by Append to simulate an unreachable store.
	Err error
}

func NewResultSink() *ResultSink {
	return &ResultSink{}
}

func (s *ResultSink) Append(_ context.Context, rec domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *ResultSink) ReadAll(_ context.Context) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}
