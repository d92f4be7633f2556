package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"kazoeru/internal/journal"
)

func newJournal(t *testing.T, events ...journal.Event) *journal.FileRecorder {
	t.Helper()
	rec, err := journal.NewFileRecorder(filepath.Join(t.TempDir(), "journal.jsonl"))
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	for _, ev := range events {
		if err := rec.Append(ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return rec
}

func TestReporter_SendsTodaySummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	rec := newJournal(t,
		journal.Event{Timestamp: now.Add(-time.Hour), Kind: journal.KindCount, UserID: "u", PatternID: 1, Pattern: "run", Amount: 2, Total: 2},
		journal.Event{Timestamp: now.AddDate(0, 0, -1), Kind: journal.KindCount, UserID: "u", PatternID: 1, Pattern: "run", Amount: 50, Total: 50},
	)

	var sent []string
	r := NewReporter(rec, func(text string) error { sent = append(sent, text); return nil }, zap.NewNop())
	r.now = func() time.Time { return now }

	if err := r.Report(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(sent) != 1 || !strings.Contains(sent[0], "2026-03-01") || !strings.Contains(sent[0], "- run: 2") {
		t.Fatalf("unexpected report: %v", sent)
	}
}

func TestReporter_SkipsQuietDay(t *testing.T) {
	rec := newJournal(t)
	r := NewReporter(rec, func(string) error { t.Fatalf("must not send"); return nil }, zap.NewNop())
	if err := r.Report(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
}

func TestReporter_SendError(t *testing.T) {
	now := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	rec := newJournal(t, journal.Event{Timestamp: now, Kind: journal.KindRegister, UserID: "u", PatternID: 1, Pattern: "run"})
	want := errors.New("blocked")
	r := NewReporter(rec, func(string) error { return want }, zap.NewNop())
	r.now = func() time.Time { return now }
	if err := r.Report(context.Background()); !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}
