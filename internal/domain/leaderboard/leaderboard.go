// Package leaderboard derives ranked views from judgment records and
// ledger snapshots.
//
// Aggregation is pure: callers (the store query layer) supply the rows
// already filtered to the requested time window and project scope, and
// these functions fold them into rankings. Empty input folds to an empty
// ranking, never an error.
package leaderboard

import (
	"sort"
	"time"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
)

// TimeRange selects the aggregation window, measured against content
// posting time.
type TimeRange string

// Supported windows.
const (
	RangeAll TimeRange = "all"
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
)

// ParseTimeRange normalizes a query-string time range. Empty means all.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch TimeRange(s) {
	case "", RangeAll:
		return RangeAll, true
	case Range24h:
		return Range24h, true
	case Range7d:
		return Range7d, true
	default:
		return "", false
	}
}

// Since returns the window's lower bound. The second return is false for
// the unbounded range.
func (r TimeRange) Since(now time.Time) (time.Time, bool) {
	switch r {
	case Range24h:
		return now.Add(-24 * time.Hour), true
	case Range7d:
		return now.Add(-7 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// JudgedPost is one judgment joined with its content item and owners, the
// unit the aggregator consumes.
type JudgedPost struct {
	ContentID   string
	ProjectID   string
	ProjectSlug string
	ProjectName string
	UserID      string
	Handle      string
	Label       model.Label
	Reward      int
	Slash       int
	PostedAt    time.Time
}

// LedgerSnapshot is a ledger entry joined with display keys.
type LedgerSnapshot struct {
	UserID      string
	Handle      string
	ProjectID   string
	ProjectSlug string
	TotalReward int
	TotalSlash  int
	NetScore    int
}

// ProjectRow is one row of the project ranking.
type ProjectRow struct {
	Rank         int     `json:"rank"`
	ProjectID    string  `json:"projectId"`
	ProjectSlug  string  `json:"projectSlug"`
	ProjectName  string  `json:"projectName"`
	NetScore     int     `json:"netScore"`
	PostCount    int     `json:"postCount"`
	GoodCount    int     `json:"goodCount"`
	ShitCount    int     `json:"shitCount"`
	CurrentShare float64 `json:"currentShare"`
}

// UserRow is one row of the user-within-project ranking. NetScore carries
// the full ledger history; the Window* counts cover only the requested
// range.
type UserRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Handle      string `json:"handle,omitempty"`
	ProjectID   string `json:"projectId"`
	ProjectSlug string `json:"projectSlug"`
	TotalReward int    `json:"totalReward"`
	TotalSlash  int    `json:"totalSlash"`
	NetScore    int    `json:"netScore"`
	WindowPosts int    `json:"windowPosts"`
	WindowGood  int    `json:"windowGood"`
	WindowShit  int    `json:"windowShit"`
}

// RankProjects groups judged posts by project, sums net scores, and ranks
// by each project's share of the positive net total. Projects with
// non-positive net scores do not contribute to the denominator.
func RankProjects(posts []JudgedPost) []ProjectRow {
	byProject := make(map[string]*ProjectRow)
	for _, p := range posts {
		row, ok := byProject[p.ProjectID]
		if !ok {
			row = &ProjectRow{
				ProjectID:   p.ProjectID,
				ProjectSlug: p.ProjectSlug,
				ProjectName: p.ProjectName,
			}
			byProject[p.ProjectID] = row
		}
		row.NetScore += p.Reward - p.Slash
		row.PostCount++
		switch p.Label {
		case model.LabelGood:
			row.GoodCount++
		case model.LabelShitposting:
			row.ShitCount++
		}
	}

	totalPositive := 0
	for _, row := range byProject {
		if row.NetScore > 0 {
			totalPositive += row.NetScore
		}
	}

	rows := make([]ProjectRow, 0, len(byProject))
	for _, row := range byProject {
		if totalPositive > 0 {
			row.CurrentShare = float64(row.NetScore) / float64(totalPositive)
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CurrentShare != rows[j].CurrentShare {
			return rows[i].CurrentShare > rows[j].CurrentShare
		}
		return rows[i].ProjectSlug < rows[j].ProjectSlug
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}

// RankUsers overlays per-window post counts onto ledger snapshots and
// ranks by raw net score. Snapshots with zero posts in the window still
// appear, carrying their historical totals.
func RankUsers(snapshots []LedgerSnapshot, posts []JudgedPost) []UserRow {
	type key struct{ userID, projectID string }

	byPair := make(map[key]*UserRow, len(snapshots))
	for _, s := range snapshots {
		byPair[key{s.UserID, s.ProjectID}] = &UserRow{
			UserID:      s.UserID,
			Handle:      s.Handle,
			ProjectID:   s.ProjectID,
			ProjectSlug: s.ProjectSlug,
			TotalReward: s.TotalReward,
			TotalSlash:  s.TotalSlash,
			NetScore:    s.NetScore,
		}
	}

	for _, p := range posts {
		k := key{p.UserID, p.ProjectID}
		row, ok := byPair[k]
		if !ok {
			// A judgment always applies its ledger delta in the same
			// atomic operation, so a missing snapshot means the caller
			// scoped the snapshot query narrower than the posts query.
			// Surface the pair anyway rather than dropping its posts.
			row = &UserRow{
				UserID:      p.UserID,
				Handle:      p.Handle,
				ProjectID:   p.ProjectID,
				ProjectSlug: p.ProjectSlug,
			}
			byPair[k] = row
		}
		row.WindowPosts++
		switch p.Label {
		case model.LabelGood:
			row.WindowGood++
		case model.LabelShitposting:
			row.WindowShit++
		}
	}

	rows := make([]UserRow, 0, len(byPair))
	for _, row := range byPair {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NetScore != rows[j].NetScore {
			return rows[i].NetScore > rows[j].NetScore
		}
		if rows[i].ProjectSlug != rows[j].ProjectSlug {
			return rows[i].ProjectSlug < rows[j].ProjectSlug
		}
		return rows[i].UserID < rows[j].UserID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}
