package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"kazoeru/internal/journal"
)

// DailyStats summarizes one day of journal events.
type DailyStats struct {
	Date          string                 `json:"date"`
	Registrations int                    `json:"registrations"`
	Deletions     int                    `json:"deletions"`
	Overwrites    int                    `json:"overwrites"`
	CountMessages int                    `json:"count_messages"`
	CountedTotal  int64                  `json:"counted_total"`
	Milestones    int                    `json:"milestones"`
	UniqueUsers   int                    `json:"unique_users"`
	PatternStats  map[int64]PatternStats `json:"pattern_stats"`
}

// PatternStats is the activity on one pattern during the day.
type PatternStats struct {
	PatternID  int64  `json:"pattern_id"`
	ChannelID  string `json:"channel_id"`
	Pattern    string `json:"pattern"`
	Messages   int    `json:"messages"`
	Counted    int64  `json:"counted"`
	Milestones int    `json:"milestones"`
	Users      int    `json:"users"`
}

// AnalyzeDay aggregates the events whose timestamp falls on targetDate's calendar day.
func AnalyzeDay(events []journal.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:         startOfDay.Format("2006-01-02"),
		PatternStats: make(map[int64]PatternStats),
	}

	users := make(map[string]bool)
	patternUsers := make(map[int64]map[string]bool)

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		users[ev.UserID] = true

		switch ev.Kind {
		case journal.KindRegister:
			stats.Registrations++
		case journal.KindDelete:
			stats.Deletions++
		case journal.KindOverwrite:
			stats.Overwrites++
		case journal.KindCount:
			stats.CountMessages++
			stats.CountedTotal += ev.Amount

			ps, ok := stats.PatternStats[ev.PatternID]
			if !ok {
				ps = PatternStats{PatternID: ev.PatternID, ChannelID: ev.ChannelID, Pattern: ev.Pattern}
				patternUsers[ev.PatternID] = make(map[string]bool)
			}
			ps.Messages++
			ps.Counted += ev.Amount
			if ev.Milestone {
				ps.Milestones++
				stats.Milestones++
			}
			patternUsers[ev.PatternID][ev.UserID] = true
			ps.Users = len(patternUsers[ev.PatternID])
			stats.PatternStats[ev.PatternID] = ps
		}
	}

	stats.UniqueUsers = len(users)
	return stats
}

// GenerateReportSummary renders the stats as a chat message. Patterns are
// listed by descending counted amount, then by id.
func (ds *DailyStats) GenerateReportSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s のカウント集計\n\n", ds.Date)
	fmt.Fprintf(&sb, "- カウント発言: %d (合計 %d)\n", ds.CountMessages, ds.CountedTotal)
	fmt.Fprintf(&sb, "- お祝い: %d\n", ds.Milestones)
	fmt.Fprintf(&sb, "- 参加ユーザー: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&sb, "- 登録 %d / うわがき %d / 削除 %d\n", ds.Registrations, ds.Overwrites, ds.Deletions)

	if len(ds.PatternStats) == 0 {
		return sb.String()
	}

	patterns := make([]PatternStats, 0, len(ds.PatternStats))
	for _, ps := range ds.PatternStats {
		patterns = append(patterns, ps)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Counted != patterns[j].Counted {
			return patterns[i].Counted > patterns[j].Counted
		}
		return patterns[i].PatternID < patterns[j].PatternID
	})

	sb.WriteString("\nパターン別:\n")
	for _, ps := range patterns {
		fmt.Fprintf(&sb, "- %s: %d (%d 発言, %d 人)", ps.Pattern, ps.Counted, ps.Messages, ps.Users)
		if ps.Milestones > 0 {
			fmt.Fprintf(&sb, ", お祝い %d", ps.Milestones)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToJSON serializes the stats for logging.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
