package models

import (
	"strings"
	"time"
)

// MatchResult is a completed match as reported by a data provider.
type MatchResult struct {
	ExternalID string    `json:"external_id"`
	League     string    `json:"league"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	PlayedAt   time.Time `json:"played_at"`
}

// BothTeamsScored reports whether each side scored at least once.
func (m MatchResult) BothTeamsScored() bool {
	return m.HomeScore > 0 && m.AwayScore > 0
}

// Margin returns the absolute score difference.
func (m MatchResult) Margin() int {
	d := m.HomeScore - m.AwayScore
	if d < 0 {
		return -d
	}
	return d
}

// MarginAtLeast reports whether the match was decided by n or more.
func (m MatchResult) MarginAtLeast(n int) bool {
	return m.Margin() >= n
}

// Involves reports whether team played in the match. Names compare case-insensitively.
func (m MatchResult) Involves(team string) bool {
	return strings.EqualFold(m.HomeTeam, team) || strings.EqualFold(m.AwayTeam, team)
}
