package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"qcm-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultSink appends records to a Redis list. RPUSH is atomic, so concurrent
// appends from several instances never interleave.
type ResultSink struct {
	client *redis.Client
	key    string
}

func NewResultSink(client *redis.Client, key string) *ResultSink {
	if key == "" {
		key = "qcm:results"
	}
	return &ResultSink{client: client, key: key}
}

func (s *ResultSink) Append(ctx context.Context, rec domain.ResultRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *ResultSink) ReadAll(ctx context.Context) ([]domain.ResultRecord, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	records := make([]domain.ResultRecord, 0, len(items))
	for i, item := range items {
		var rec domain.ResultRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
