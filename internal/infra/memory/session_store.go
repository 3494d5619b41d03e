package memory

import (
	"context"
	"sync"
	"time"

	"qcm-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions older than ttl are treated as ended.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	clock    func() time.Time
	sessions map[string]domain.AdminSession
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]domain.AdminSession),
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.AdminSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.AdminSession{}, domain.ErrSessionNotFound
	}
	if s.ttl > 0 && !session.CreatedAt.Add(s.ttl).After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domain.AdminSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

// Save stores session and drops every expired one, so sessions whose cookie
// is never presented again do not pile up.
func (s *SessionStore) Save(_ context.Context, session domain.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 {
		now := s.clock()
		for id, existing := range s.sessions {
			if !existing.CreatedAt.Add(s.ttl).After(now) {
				delete(s.sessions, id)
			}
		}
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
