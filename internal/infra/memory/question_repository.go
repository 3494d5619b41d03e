package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"qcm-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader produces a validated question set from a backing source.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) (domain.QuestionSet, error)
}

const questionSetKey = "questions"

// QuestionRepository caches the question set with TTL to avoid re-reading the source on every render.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    domain.QuestionSet
	expiresAt time.Time
	loaded    bool
	// gen advances on Invalidate; a load only stores its set if gen is unchanged.
	gen uint64
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestionSet(ctx context.Context) (domain.QuestionSet, error) {
	if set, ok := r.fresh(r.clock()); ok {
		return set, nil
	}

	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()

	key := questionSetKey + ":" + strconv.FormatUint(gen, 10)
	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		if set, ok := r.fresh(now); ok {
			return set, nil
		}

		set, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		r.mu.Lock()
		if r.gen == gen {
			r.cached = set
			r.expiresAt = now.Add(r.ttlWithJitter())
			r.loaded = true
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// Invalidate forces the next read to hit the loader, and keeps a load already
// in flight from caching what it read.
func (r *QuestionRepository) Invalidate(_ context.Context) error {
	r.mu.Lock()
	r.loaded = false
	r.gen++
	r.mu.Unlock()
	return nil
}

func (r *QuestionRepository) fresh(now time.Time) (domain.QuestionSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && r.expiresAt.After(now) {
		return r.cached, true
	}
	return domain.QuestionSet{}, false
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSource is a read-only source backed by a literal list (useful for tests/demos).
type StaticQuestionSource struct {
	rows []domain.QuestionRow
}

func NewStaticQuestionSource(questions []domain.Question) *StaticQuestionSource {
	rows := make([]domain.QuestionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, domain.RowFromQuestion(q))
	}
	return &StaticQuestionSource{rows: rows}
}

// NewStaticRowSource keeps raw rows as-is, malformed ones included.
func NewStaticRowSource(rows []domain.QuestionRow) *StaticQuestionSource {
	return &StaticQuestionSource{rows: rows}
}

func (s *StaticQuestionSource) Rows(_ context.Context) ([]domain.QuestionRow, error) {
	out := make([]domain.QuestionRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *StaticQuestionSource) AppendRow(_ context.Context, _ domain.QuestionRow) error {
	return domain.ErrReadOnlySource
}

// QuestionSource is a writable in-memory source.
type QuestionSource struct {
	mu   sync.RWMutex
	rows []domain.QuestionRow
}

func NewQuestionSource(rows ...domain.QuestionRow) *QuestionSource {
	return &QuestionSource{rows: append([]domain.QuestionRow(nil), rows...)}
}

func (s *QuestionSource) Rows(_ context.Context) ([]domain.QuestionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuestionRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *QuestionSource) AppendRow(_ context.Context, row domain.QuestionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}
