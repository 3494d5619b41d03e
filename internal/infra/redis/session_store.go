package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qcm-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-backed implementation of app.SessionRepository.
// Each session is one JSON value whose TTL ends the session, so admin state
// survives restarts and is shared by every instance behind a load balancer.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.AdminSession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AdminSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.AdminSession{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.AdminSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.AdminSession{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Save stores the session; the TTL restarts from the session's creation time.
func (s *SessionStore) Save(ctx context.Context, session domain.AdminSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if ttl > 0 && !session.CreatedAt.IsZero() {
		ttl = time.Until(session.CreatedAt.Add(s.ttl))
		if ttl <= 0 {
			return s.client.Del(ctx, s.key(session.ID)).Err()
		}
	}
	return s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "qcm:admin:session:" + id
}
