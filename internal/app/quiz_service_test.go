package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"qcm-service/internal/app"
	"qcm-service/internal/domain"
	"qcm-service/internal/infra/memory"
)

func TestSubmitScoresAndRecords(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultSink()
	service := newTestService(sampleQuestions(), sink)

	outcome, err := service.Submit(ctx, domain.Submission{
		FirstName: " Amine ",
		LastName:  "Benali",
		Selected:  []int{1, 1},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	rec := outcome.Record
	if rec.Correct != 1 || rec.Total != 2 || rec.Percent != 50.0 {
		t.Fatalf("expected 1/2 50.0, got %+v", rec)
	}
	if rec.FirstName != "Amine" || rec.Timestamp != "2026-10-01 09:30:00" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !outcome.Saved || outcome.SaveErr != nil {
		t.Fatalf("expected saved outcome, got %+v", outcome)
	}

	records, _ := sink.ReadAll(ctx)
	if len(records) != 1 || records[0] != rec {
		t.Fatalf("expected record persisted, got %+v", records)
	}
	if outcome.ExportName != "resultat_Benali_Amine.csv" {
		t.Fatalf("unexpected export name %s", outcome.ExportName)
	}
	if !strings.HasSuffix(string(outcome.Export), "2026-10-01 09:30:00,Benali,Amine,1,2,50.0\n") {
		t.Fatalf("unexpected export %q", outcome.Export)
	}
}

func TestSubmitRejectsBlankNames(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultSink()
	service := newTestService(sampleQuestions(), sink)

	cases := map[string]domain.Submission{
		"first_name": {FirstName: "   ", LastName: "Benali", Selected: []int{1, 0}},
		"last_name":  {FirstName: "Amine", LastName: "", Selected: []int{1, 0}},
	}
	for field, sub := range cases {
		_, err := service.Submit(ctx, sub)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Field != field {
			t.Fatalf("expected %s validation error, got %v", field, err)
		}
	}

	records, _ := sink.ReadAll(ctx)
	if len(records) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(records))
	}
}

func TestSubmitWithEmptyQuestionSet(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultSink()
	service := newTestService(nil, sink)

	set, err := service.QuestionSet(ctx)
	if err != nil || !set.Empty() {
		t.Fatalf("expected empty set, got %+v (%v)", set, err)
	}
	if _, err := service.Submit(ctx, domain.Submission{FirstName: "a", LastName: "b"}); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestSubmitKeepsExportWhenSinkFails(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewResultSink()
	sink.Err = errors.New("spreadsheet unreachable")
	service := newTestService(sampleQuestions(), sink)

	outcome, err := service.Submit(ctx, domain.Submission{FirstName: "Léa", LastName: "Dupont", Selected: []int{0, 0}})
	if err != nil {
		t.Fatalf("submit should degrade, got %v", err)
	}
	if outcome.Saved || outcome.SaveErr == nil {
		t.Fatalf("expected save failure reported, got %+v", outcome)
	}
	if len(outcome.Export) == 0 {
		t.Fatalf("expected personal export despite save failure")
	}
}

func TestSubmitPublishesToFeed(t *testing.T) {
	ctx := context.Background()
	feed := app.NewResultFeed()
	ch, cancel := feed.Subscribe()
	defer cancel()

	service := app.NewQuizServiceWithClock(questionRepo(sampleQuestions()), memory.NewResultSink(), feed, fixedClock)
	if _, err := service.Submit(ctx, domain.Submission{FirstName: "a", LastName: "b", Selected: []int{1, 0}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case rec := <-ch:
		if rec.Correct != 2 {
			t.Fatalf("expected 2 correct, got %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected feed update")
	}
}

func TestSourceLoaderDropsMalformedRows(t *testing.T) {
	src := memory.NewStaticRowSource([]domain.QuestionRow{
		{Question: "ok", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "3"},
		{Question: "bad", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "x"},
	})
	set, err := app.NewSourceLoader(src).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(set.Questions) != 1 || set.Questions[0].Text != "ok" || len(set.Skipped) != 1 {
		t.Fatalf("unexpected set %+v", set)
	}
}

func newTestService(questions []domain.Question, sink app.ResultSink) *app.QuizService {
	return app.NewQuizServiceWithClock(questionRepo(questions), sink, nil, fixedClock)
}

func questionRepo(questions []domain.Question) *memory.QuestionRepository {
	loader := app.NewSourceLoader(memory.NewStaticQuestionSource(questions))
	return memory.NewQuestionRepository(loader, 5*time.Minute)
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "x = 3; if x > 2 ...", Options: []string{"A", "B", "C", "D"}, CorrectOption: 1},
		{Text: "else branch?", Options: []string{"A", "B", "C"}, CorrectOption: 0},
	}
}
