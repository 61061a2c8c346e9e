// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/japa/internal/achievement"
)

// Config defines practice settings.
type Config struct {
	User     string
	Variant  string
	TextFile string
}

// BoardConfig defines options for the leaderboard.
type BoardConfig struct {
	User    string
	Limit   int
	Refresh time.Duration
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Addr           string
	AdminToken     string
	AllowedOrigins []string
	DBPath         string
	TextFiles      map[string]string
}

// Progress is the persisted record of one user's practice.
type Progress struct {
	UserKey           string           `json:"user"`
	TotalPoints       int              `json:"total_points"`
	CompletedSessions int              `json:"completed_sessions"`
	Achievements      []achievement.ID `json:"achievements"`
	LastActive        time.Time        `json:"last_active"`
}

// NewProgress returns the zero-valued record for a user seen for the first time.
func NewProgress(userKey string) Progress {
	return Progress{UserKey: userKey, Achievements: []achievement.ID{}}
}

// Clone returns a copy that shares no slices with p.
func (p Progress) Clone() Progress {
	out := p
	out.Achievements = append([]achievement.ID{}, p.Achievements...)
	return out
}

// Repetition captures one accepted reproduction of the target text.
type Repetition struct {
	UserKey    string
	Variant    string
	StartedAt  time.Time
	EndedAt    time.Time
	Chars      int
	Keystrokes int
	DurationMs int64
}

// LeaderboardEntry is a ranked progress record.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	Progress
}
