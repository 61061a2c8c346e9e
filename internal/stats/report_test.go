package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "japa.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i, key := range []string{"ana", "bo", "cy"} {
		p := model.Progress{UserKey: key, TotalPoints: (i + 1) * 10, CompletedSessions: i + 1}
		if err := st.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	for i := 0; i < 4; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		_, err := st.InsertRepetition(ctx, model.Repetition{
			UserKey:    "bo",
			Variant:    "roman",
			StartedAt:  start,
			EndedAt:    end,
			Chars:      90,
			Keystrokes: 95,
			DurationMs: end.Sub(start).Milliseconds(),
		})
		if err != nil {
			t.Fatalf("insert repetition: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, "bo", 2, 3)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}
	if report.Entries[0].UserKey != "cy" || report.Entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", report.Entries[0])
	}
	if report.Progress.UserKey != "bo" || report.Progress.TotalPoints != 20 {
		t.Fatalf("unexpected progress: %+v", report.Progress)
	}
	if len(report.Repetitions) != 3 {
		t.Fatalf("expected 3 repetitions, got %d", len(report.Repetitions))
	}
}
