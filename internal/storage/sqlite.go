package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a database that lives only as long as the process.
const MemoryPath = ":memory:"

// SQLiteStore implements PatternRepository and CountRepository on one SQLite handle.
// Every method takes the same mutex, so concurrent callers are serialized per call.
// A find followed by an update is two separate critical sections.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Schema creation is idempotent; reopening an existing file keeps its rows.
func Open(path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: an in-memory database is private to its connection,
	// and a file database has a single writer anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) RegisterPattern(ctx context.Context, channelID, pattern string) (PatternRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO pattern_record (channel_id, pattern) VALUES (?, ?)",
		channelID, pattern)
	if err != nil {
		return PatternRecord{}, opErr("register pattern", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PatternRecord{}, opErr("register pattern", err)
	}
	return PatternRecord{ID: id, ChannelID: channelID, Pattern: pattern}, nil
}

func (s *SQLiteStore) FindMatchingPattern(ctx context.Context, channelID, text string) (PatternRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.listUnlocked(ctx, channelID)
	if err != nil {
		return PatternRecord{}, false, opErr("find pattern", err)
	}
	for _, r := range records {
		if r.Pattern == "" {
			continue
		}
		if strings.Contains(text, r.Pattern) {
			return r, true, nil
		}
	}
	return PatternRecord{}, false, nil
}

func (s *SQLiteStore) ListPatterns(ctx context.Context, channelID string) ([]PatternRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.listUnlocked(ctx, channelID)
	if err != nil {
		return nil, opErr("list patterns", err)
	}
	return records, nil
}

func (s *SQLiteStore) listUnlocked(ctx context.Context, channelID string) ([]PatternRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, channel_id, pattern FROM pattern_record WHERE channel_id = ? ORDER BY id",
		channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PatternRecord
	for rows.Next() {
		var r PatternRecord
		if err := rows.Scan(&r.ID, &r.ChannelID, &r.Pattern); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeletePattern(ctx context.Context, patternID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pattern_record WHERE id = ?", patternID); err != nil {
		return opErr("delete pattern", err)
	}
	return nil
}

func (s *SQLiteStore) FindCount(ctx context.Context, patternID int64, userID string) (CountRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r CountRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT id, pattern_id, user_id, count FROM count_record WHERE pattern_id = ? AND user_id = ? ORDER BY id LIMIT 1",
		patternID, userID).Scan(&r.ID, &r.PatternID, &r.UserID, &r.Count)
	if err == sql.ErrNoRows {
		return CountRecord{}, false, nil
	}
	if err != nil {
		return CountRecord{}, false, opErr("find count", err)
	}
	return r, true, nil
}

func (s *SQLiteStore) CreateCount(ctx context.Context, patternID int64, userID string, count int64) (CountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO count_record (pattern_id, user_id, count) VALUES (?, ?, ?)",
		patternID, userID, count)
	if err != nil {
		return CountRecord{}, opErr("create count", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CountRecord{}, opErr("create count", err)
	}
	return CountRecord{ID: id, PatternID: patternID, UserID: userID, Count: count}, nil
}

func (s *SQLiteStore) UpdateCount(ctx context.Context, record CountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"UPDATE count_record SET count = ? WHERE id = ?",
		record.Count, record.ID); err != nil {
		return opErr("update count", err)
	}
	return nil
}

// CountsForPattern returns every count recorded for patternID, including counts
// whose pattern has since been deleted.
func (s *SQLiteStore) CountsForPattern(ctx context.Context, patternID int64) ([]CountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, pattern_id, user_id, count FROM count_record WHERE pattern_id = ? ORDER BY id",
		patternID)
	if err != nil {
		return nil, opErr("counts for pattern", err)
	}
	defer rows.Close()

	var out []CountRecord
	for rows.Next() {
		var r CountRecord
		if err := rows.Scan(&r.ID, &r.PatternID, &r.UserID, &r.Count); err != nil {
			return nil, opErr("counts for pattern", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("counts for pattern", err)
	}
	return out, nil
}
