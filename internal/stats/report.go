package stats

import (
	"context"

	"github.com/verte-zerg/japa/internal/model"
)

// Source provides the records a report is built from. *store.Store
// satisfies it.
type Source interface {
	ListProgress(ctx context.Context) ([]model.Progress, error)
	Load(ctx context.Context, userKey string) (model.Progress, error)
	ListRepetitions(ctx context.Context, userKey string, limit int) ([]model.Repetition, error)
}

// Report contains precomputed data for leaderboard rendering.
type Report struct {
	Entries     []model.LeaderboardEntry
	Progress    model.Progress
	Repetitions []model.Repetition
}

// BuildReport loads the ranked leaderboard, capped at limit when positive,
// and the focus user's record with its last reps repetitions.
func BuildReport(ctx context.Context, st Source, userKey string, limit, reps int) (Report, error) {
	records, err := st.ListProgress(ctx)
	if err != nil {
		return Report{}, err
	}
	entries := Rank(records)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	report := Report{Entries: entries}
	if userKey == "" {
		return report, nil
	}
	report.Progress, err = st.Load(ctx, userKey)
	if err != nil {
		return Report{}, err
	}
	report.Repetitions, err = st.ListRepetitions(ctx, userKey, reps)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}
