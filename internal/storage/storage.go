// Package storage persists counting patterns and per-user counts.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// PatternRecord is a literal substring registered for one chat channel.
type PatternRecord struct {
	ID        int64
	ChannelID string
	Pattern   string
}

// CountRecord is the accumulated count of one user for one pattern.
// PatternID is not enforced as a foreign key: deleting a pattern leaves its counts behind.
type CountRecord struct {
	ID        int64
	PatternID int64
	UserID    string
	Count     int64
}

// PatternRepository stores channel patterns.
// FindMatchingPattern returns the first pattern, in insertion order, whose text occurs in text.
type PatternRepository interface {
	RegisterPattern(ctx context.Context, channelID, pattern string) (PatternRecord, error)
	FindMatchingPattern(ctx context.Context, channelID, text string) (PatternRecord, bool, error)
	ListPatterns(ctx context.Context, channelID string) ([]PatternRecord, error)
	DeletePattern(ctx context.Context, patternID int64) error
}

// CountRepository stores per-(pattern, user) counts.
// Callers guarantee CreateCount is only used when FindCount reported no record.
type CountRepository interface {
	FindCount(ctx context.Context, patternID int64, userID string) (CountRecord, bool, error)
	CreateCount(ctx context.Context, patternID int64, userID string, count int64) (CountRecord, error)
	UpdateCount(ctx context.Context, record CountRecord) error
}

// ErrStorage matches every error returned by a failed store operation.
var ErrStorage = errors.New("storage failure")

// OpError describes a failed store operation.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool { return target == ErrStorage }

func opErr(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
