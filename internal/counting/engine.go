// Package counting applies registration, overwrite, deletion and passive counting
// to chat messages on top of the pattern and count stores.
package counting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"kazoeru/internal/journal"
	"kazoeru/internal/matcher"
	"kazoeru/internal/storage"
)

// Milestone is the exact total that is celebrated instead of reported.
const Milestone = 3

// Fixed reply texts.
const (
	RegisteredReply    = "ヒヒーン！"
	RegisterUsageHint  = "\"かぞえて [pattern]\" のようにお願いしてくださいヒン"
	OverwriteUsageHint = "\"うわがき [パターン] [量]\" のようにお願いしてくださいヒン"
	deletedReplyPrefix = "削除しました: "
)

// Message is the part of a chat message the engine needs.
type Message struct {
	ChannelID string
	AuthorID  string
	Text      string
}

// Reply is the text to send back to the message's channel.
type Reply struct {
	Text      string
	Milestone bool
}

// Composer builds the celebration text.
type Composer interface {
	Compose() (string, error)
}

// Engine is safe for concurrent use as long as its stores are.
type Engine struct {
	patterns storage.PatternRepository
	counts   storage.CountRepository
	praise   Composer
	recorder journal.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New builds an Engine. recorder may be nil.
func New(patterns storage.PatternRepository, counts storage.CountRepository, praise Composer, recorder journal.Recorder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		patterns: patterns,
		counts:   counts,
		praise:   praise,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Register stores the pattern following the registration trigger.
// A missing pattern yields the usage hint and leaves the store untouched.
func (e *Engine) Register(ctx context.Context, msg Message) (Reply, bool, error) {
	pattern, ok := matcher.ExtractRegistration(msg.Text)
	if !ok {
		return Reply{Text: RegisterUsageHint}, true, nil
	}
	rec, err := e.patterns.RegisterPattern(ctx, msg.ChannelID, pattern)
	if err != nil {
		return Reply{}, false, err
	}
	e.logger.Info("pattern registered",
		zap.String("channel", msg.ChannelID),
		zap.Int64("pattern_id", rec.ID),
		zap.String("pattern", rec.Pattern))
	e.record(journal.Event{Kind: journal.KindRegister, ChannelID: msg.ChannelID, UserID: msg.AuthorID, PatternID: rec.ID, Pattern: rec.Pattern})
	return Reply{Text: RegisteredReply}, true, nil
}

// Overwrite sets the author's count for the matching pattern to the number after it.
// Without a matching pattern nothing happens.
func (e *Engine) Overwrite(ctx context.Context, msg Message) (Reply, bool, error) {
	pattern, found, err := e.patterns.FindMatchingPattern(ctx, msg.ChannelID, msg.Text)
	if err != nil || !found {
		return Reply{}, false, err
	}
	amount, ok, err := matcher.ExtractOverwrite(pattern.Pattern, msg.Text)
	if err != nil {
		return Reply{}, false, fmt.Errorf("overwrite pattern %d: %w", pattern.ID, err)
	}
	if !ok {
		return Reply{Text: OverwriteUsageHint}, true, nil
	}

	total, err := e.set(ctx, pattern.ID, msg.AuthorID, int64(amount))
	if err != nil {
		return Reply{}, false, err
	}
	e.record(journal.Event{Kind: journal.KindOverwrite, ChannelID: msg.ChannelID, UserID: msg.AuthorID, PatternID: pattern.ID, Pattern: pattern.Pattern, Amount: int64(amount), Total: total})
	return Reply{Text: strconv.FormatInt(total, 10)}, true, nil
}

// Delete removes the matching pattern. Its counts are kept.
func (e *Engine) Delete(ctx context.Context, msg Message) (Reply, bool, error) {
	pattern, found, err := e.patterns.FindMatchingPattern(ctx, msg.ChannelID, msg.Text)
	if err != nil || !found {
		return Reply{}, false, err
	}
	if err := e.patterns.DeletePattern(ctx, pattern.ID); err != nil {
		return Reply{}, false, err
	}
	e.logger.Info("pattern deleted",
		zap.String("channel", msg.ChannelID),
		zap.Int64("pattern_id", pattern.ID),
		zap.String("pattern", pattern.Pattern))
	e.record(journal.Event{Kind: journal.KindDelete, ChannelID: msg.ChannelID, UserID: msg.AuthorID, PatternID: pattern.ID, Pattern: pattern.Pattern})
	return Reply{Text: deletedReplyPrefix + pattern.Pattern}, true, nil
}

// Count adds the message's amount to the author's count for the matching pattern.
// The first count for a pair is reported as is; an updated total equal to
// Milestone is answered with a celebration instead of the number.
func (e *Engine) Count(ctx context.Context, msg Message) (Reply, bool, error) {
	pattern, found, err := e.patterns.FindMatchingPattern(ctx, msg.ChannelID, msg.Text)
	if err != nil || !found {
		return Reply{}, false, err
	}
	amount, err := matcher.ExtractIncrement(pattern.Pattern, msg.Text)
	if err != nil {
		return Reply{}, false, fmt.Errorf("count pattern %d: %w", pattern.ID, err)
	}

	rec, exists, err := e.counts.FindCount(ctx, pattern.ID, msg.AuthorID)
	if err != nil {
		return Reply{}, false, err
	}
	ev := journal.Event{Kind: journal.KindCount, ChannelID: msg.ChannelID, UserID: msg.AuthorID, PatternID: pattern.ID, Pattern: pattern.Pattern, Amount: int64(amount)}

	if !exists {
		if _, err := e.counts.CreateCount(ctx, pattern.ID, msg.AuthorID, int64(amount)); err != nil {
			return Reply{}, false, err
		}
		ev.Total = int64(amount)
		e.record(ev)
		return Reply{Text: strconv.FormatInt(int64(amount), 10)}, true, nil
	}

	rec.Count += int64(amount)
	if err := e.counts.UpdateCount(ctx, rec); err != nil {
		return Reply{}, false, err
	}
	ev.Total = rec.Count

	if rec.Count == Milestone {
		ev.Milestone = true
		e.record(ev)
		text, err := e.praise.Compose()
		if err != nil {
			return Reply{}, false, fmt.Errorf("compose celebration: %w", err)
		}
		return Reply{Text: text, Milestone: true}, true, nil
	}
	e.record(ev)
	return Reply{Text: strconv.FormatInt(rec.Count, 10)}, true, nil
}

// set replaces the (pattern, user) count with value, creating the record if needed.
func (e *Engine) set(ctx context.Context, patternID int64, userID string, value int64) (int64, error) {
	rec, exists, err := e.counts.FindCount(ctx, patternID, userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		if _, err := e.counts.CreateCount(ctx, patternID, userID, value); err != nil {
			return 0, err
		}
		return value, nil
	}
	rec.Count = value
	if err := e.counts.UpdateCount(ctx, rec); err != nil {
		return 0, err
	}
	return value, nil
}

func (e *Engine) record(ev journal.Event) {
	if e.recorder == nil {
		return
	}
	ev.Timestamp = e.now().UTC()
	if err := e.recorder.Append(ev); err != nil {
		e.logger.Warn("failed to append journal event",
			zap.String("kind", string(ev.Kind)),
			zap.Int64("pattern_id", ev.PatternID),
			zap.Error(err))
	}
}
