package redis

import (
	"context"
	"testing"

	"qcm-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultSinkAppendsInOrder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	sink := NewResultSink(newClient(mr), "")
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
}

func TestResultSinkEmpty(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	records, err := NewResultSink(newClient(mr), "qcm:test").ReadAll(context.Background())
	if err != nil || len(records) != 0 {
		t.Fatalf("expected no records, got %d (%v)", len(records), err)
	}
}
