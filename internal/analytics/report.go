package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kazoeru/internal/journal"
)

// Reporter turns the current UTC day of the journal into a message.
type Reporter struct {
	source journal.Recorder
	send   func(text string) error
	logger *zap.Logger
	now    func() time.Time
}

func NewReporter(source journal.Recorder, send func(text string) error, logger *zap.Logger) *Reporter {
	return &Reporter{source: source, send: send, logger: logger, now: time.Now}
}

// Report sends the summary of today's activity. Days without counts are skipped.
func (r *Reporter) Report(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	events, err := r.source.Load()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	stats := AnalyzeDay(events, r.now().UTC())
	if js, err := stats.ToJSON(); err == nil {
		r.logger.Debug("daily stats", zap.String("stats", js))
	}
	if stats.CountMessages == 0 && stats.Registrations == 0 && stats.Deletions == 0 && stats.Overwrites == 0 {
		r.logger.Info("no activity to report", zap.String("date", stats.Date))
		return nil
	}
	if err := r.send(stats.GenerateReportSummary()); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
