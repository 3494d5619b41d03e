package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"qcm-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

func TestResultSinkAppendsToWorkbook(t *testing.T) {
	ctx := context.Background()
	book := NewWorkbook(filepath.Join(t.TempDir(), "QCM_Algo_Resultats.xlsx"))
	sink := NewResultSink(book)

	records, err := sink.ReadAll(ctx)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty workbook, got %d (%v)", len(records), err)
	}

	want := []domain.ResultRecord{
		{Timestamp: "2026-10-01 10:00:00", FirstName: "Amine", LastName: "Benali", Correct: 2, Total: 3, Percent: 66.7},
		{Timestamp: "2026-10-01 10:01:00", FirstName: "Léa", LastName: "Dupont", Correct: 3, Total: 3, Percent: 100},
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

	f, err := excelize.OpenFile(book.Path())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	header, err := f.GetCellValue(ResultsSheet, "B1")
	if err != nil || header != "nom" {
		t.Fatalf("expected nom header, got %q (%v)", header, err)
	}
}

func TestQuestionsShareWorkbookWithResults(t *testing.T) {
	ctx := context.Background()
	book := NewWorkbook(filepath.Join(t.TempDir(), "qcm.xlsx"))
	sink := NewResultSink(book)
	src := NewQuestionSource(book)

	if err := sink.Append(ctx, domain.ResultRecord{Timestamp: "t", FirstName: "a", LastName: "b", Correct: 1, Total: 1, Percent: 100}); err != nil {
		t.Fatalf("append result: %v", err)
	}
	rows := []domain.QuestionRow{
		{Question: "If?", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "1"},
		{Question: "Broken", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "x"},
	}
	for _, row := range rows {
		if err := src.AppendRow(ctx, row); err != nil {
			t.Fatalf("append question: %v", err)
		}
	}

	got, err := src.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Fatalf("unexpected rows %+v", got)
	}
	set := domain.BuildQuestionSet(got)
	if len(set.Questions) != 1 {
		t.Fatalf("expected malformed row skipped, got %+v", set)
	}

	records, _ := sink.ReadAll(ctx)
	if len(records) != 1 {
		t.Fatalf("expected results untouched, got %d", len(records))
	}
}
