package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"qcm-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{set: sampleSet()}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.GetQuestionSet(context.Background()); err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	set, err := repo.GetQuestionSet(context.Background())
	if err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(set.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(set.Questions))
	}
}

func TestQuestionRepositoryInvalidate(t *testing.T) {
	loader := &countingLoader{set: sampleSet()}
	repo := NewQuestionRepository(loader, time.Minute)

	_, _ = repo.GetQuestionSet(context.Background())
	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetQuestionSet(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionRepositoryInvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	loader := &gatedLoader{
		started: make(chan struct{}),
		release: make(chan struct{}),
		set:     sampleSet(),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	done := make(chan domain.QuestionSet)
	go func() {
		set, _ := repo.GetQuestionSet(ctx)
		done <- set
	}()
	<-loader.started

	// A question is appended while the first load is still reading.
	loader.setNext(domain.QuestionSet{Questions: append(sampleSet().Questions, sampleSet().Questions[0])})
	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	if stale := <-done; len(stale.Questions) != 1 {
		t.Fatalf("expected the in-flight load to return what it read, got %d", len(stale.Questions))
	}

	set, err := repo.GetQuestionSet(ctx)
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected reload after invalidate, got %d questions", len(set.Questions))
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{set: sampleSet()}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestionSet(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestionSet(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestStaticQuestionSourceIsReadOnly(t *testing.T) {
	src := NewStaticQuestionSource(sampleSet().Questions)
	rows, err := src.Rows(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d (%v)", len(rows), err)
	}
	if rows[0].CorrectOption != "1" || rows[0].Option4 != "" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if err := src.AppendRow(context.Background(), rows[0]); err != domain.ErrReadOnlySource {
		t.Fatalf("expected read-only error, got %v", err)
	}
}

func TestResultSinkAppendAndRead(t *testing.T) {
	sink := NewResultSink()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := sink.Append(ctx, domain.ResultRecord{FirstName: "a", LastName: "b", Correct: i, Total: 3}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	records, err := sink.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 || records[2].Correct != 2 {
		t.Fatalf("unexpected records %+v", records)
	}
}

type countingLoader struct {
	set   domain.QuestionSet
	calls int
}

func (l *countingLoader) LoadQuestions(_ context.Context) (domain.QuestionSet, error) {
	l.calls++
	return l.set, nil
}

// gatedLoader blocks its first load until release is closed.
type gatedLoader struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	set   domain.QuestionSet
	next  *domain.QuestionSet
	calls int
}

func (l *gatedLoader) setNext(set domain.QuestionSet) {
	l.mu.Lock()
	l.next = &set
	l.mu.Unlock()
}

func (l *gatedLoader) LoadQuestions(_ context.Context) (domain.QuestionSet, error) {
	l.mu.Lock()
	l.calls++
	first := l.calls == 1
	set := l.set
	if l.next != nil {
		set = *l.next
	}
	l.mu.Unlock()

	if first {
		close(l.started)
		<-l.release
	}
	return set, nil
}

func sampleSet() domain.QuestionSet {
	return domain.QuestionSet{
		Questions: []domain.Question{
			{
				Text:          "What does if x > 2 print for x = 3?",
				Options:       []string{"nothing", "yes", "no"},
				CorrectOption: 1,
			},
		},
	}
}
