package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

func TestResultSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "resultats_qcm.csv")
	sink := NewResultSink(path)

	records, err := sink.ReadAll(ctx)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty sink, got %d (%v)", len(records), err)
	}

	want := []domain.ResultRecord{
		{Timestamp: "2026-10-01 10:00:00", FirstName: "Amine", LastName: "Benali", Correct: 2, Total: 3, Percent: 66.7},
		{Timestamp: "2026-10-01 10:01:00", FirstName: "Léa", LastName: "Dupont, Jr", Correct: 3, Total: 3, Percent: 100},
		{Timestamp: "2026-10-01 10:02:00", FirstName: "Jean", LastName: "O\"Neil", Correct: 0, Total: 3, Percent: 0},
	}
	for _, rec := range want {
		if err := sink.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := sink.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %+v want %+v", i, got[i], want[i])
		}
	}

	// The file on disk is exactly the full export of the same records.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var exported bytes.Buffer
	if err := export.WriteCSV(&exported, got); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Equal(onDisk, exported.Bytes()) {
		t.Fatalf("file and export differ:\n%s\n---\n%s", onDisk, exported.String())
	}
}

func TestQuestionSourceAppendAndRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "questions.csv")
	content := "question,option1,option2,option3,option4,correct_option\n" +
		"\"Si x=3, if x>2 affiche?\",oui,non,rien,erreur,0\n" +
		"Cassee,a,b,c,d,deux\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := NewQuestionSource(path)
	row := domain.NewQuestion{Text: "Else?", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: 3}.Row()
	if err := src.AppendRow(ctx, row); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 raw rows, got %d", len(rows))
	}

	set := domain.BuildQuestionSet(rows)
	if len(set.Questions) != 2 || len(set.Skipped) != 1 {
		t.Fatalf("expected 2 valid and 1 skipped, got %+v", set)
	}
	if set.Questions[1].Text != "Else?" || set.Questions[1].CorrectOption != 3 {
		t.Fatalf("unexpected appended question %+v", set.Questions[1])
	}
}

func TestQuestionSourceCreatesHeader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "questions.csv")
	src := NewQuestionSource(path)

	row := domain.QuestionRow{Question: "q", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "1"}
	if err := src.AppendRow(ctx, row); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "question,option1,option2,option3,option4,correct_option\nq,a,b,c,d,1\n" {
		t.Fatalf("unexpected file %q", data)
	}
}
