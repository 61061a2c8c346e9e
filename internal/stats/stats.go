// Package stats ranks users and renders practice reports as text.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RepetitionMetrics computes WPM and CPM for one repetition.
func RepetitionMetrics(chars int, durationMs int64) (wpm, cpm float64) {
	if durationMs <= 0 || chars <= 0 {
		return 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(chars) / 5.0) / minutes
	cpm = float64(chars) / minutes
	return wpm, cpm
}

// Rank orders records for the leaderboard and assigns 1-based ranks.
// Ties on points are broken by sessions, then by user key.
func Rank(records []model.Progress) []model.LeaderboardEntry {
	sorted := make([]model.Progress, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.CompletedSessions != b.CompletedSessions {
			return a.CompletedSessions > b.CompletedSessions
		}
		return a.UserKey < b.UserKey
	})
	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = model.LeaderboardEntry{Rank: i + 1, Progress: p}
	}
	return entries
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// SpeedSeries returns the WPM of each repetition in order.
func SpeedSeries(reps []model.Repetition) []float64 {
	out := make([]float64, len(reps))
	for i, r := range reps {
		out[i], _ = RepetitionMetrics(r.Chars, r.DurationMs)
	}
	return out
}

// RenderLeaderboard prints ranked entries as an aligned table. A positive
// width truncates each line to fit.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No practitioners yet.")
		return err
	}
	headers := []string{"#", "User", "Points", "Sessions", "Badges", "Last Active"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.UserKey,
			humanize.Comma(int64(e.TotalPoints)),
			humanize.Comma(int64(e.CompletedSessions)),
			BadgeIcons(e.Achievements),
			LastActive(e.LastActive),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true})
	for _, line := range lines {
		if width > 0 {
			line = truncate(line, width)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderProgress prints a per-user summary with achievements and a speed
// sparkline over the given repetitions.
func RenderProgress(w io.Writer, p model.Progress, reps []model.Repetition) error {
	if _, err := fmt.Fprintf(w, "User: %s\n", p.UserKey); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Points: %s\n", humanize.Comma(int64(p.TotalPoints))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %s\n", humanize.Comma(int64(p.CompletedSessions))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Last active: %s\n", LastActive(p.LastActive)); err != nil {
		return err
	}
	if next, ok := achievement.Next(p.TotalPoints); ok {
		if _, err := fmt.Fprintf(w, "Next: %s %s in %d points\n", next.Icon, next.Name, next.Threshold-p.TotalPoints); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if err := RenderAchievements(w, p.Achievements); err != nil {
		return err
	}
	if len(reps) == 0 {
		return nil
	}
	speeds := SpeedSeries(reps)
	best := 0.0
	var total float64
	for _, s := range speeds {
		best = math.Max(best, s)
		total += s
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Repetitions: %d  Avg WPM: %.1f  Best WPM: %.1f\n", len(reps), total/float64(len(reps)), best); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Speed: %s\n", Sparkline(MovingAverage(speeds, 3)))
	return err
}

// RenderAchievements lists every achievement, marking the unlocked ones.
func RenderAchievements(w io.Writer, have []achievement.ID) error {
	unlocked := make(map[achievement.ID]bool, len(have))
	for _, id := range have {
		unlocked[id] = true
	}
	if _, err := fmt.Fprintln(w, "Achievements"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(achievement.All()))
	for _, def := range achievement.All() {
		mark := "  "
		if unlocked[def.ID] {
			mark = "✓ "
		}
		rows = append(rows, []string{mark + def.Icon, def.Name, fmt.Sprintf("%d", def.Threshold)})
	}
	for _, line := range formatTable(nil, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// BadgeIcons joins the icons of the given achievements.
func BadgeIcons(ids []achievement.ID) string {
	icons := make([]string, 0, len(ids))
	for _, id := range ids {
		if def, ok := achievement.Lookup(id); ok {
			icons = append(icons, def.Icon)
		}
	}
	return strings.Join(icons, "")
}

// LastActive renders t relative to now, or "never".
func LastActive(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
