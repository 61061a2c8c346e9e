package boardui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"
)

type fakeSource struct {
	records []model.Progress
	reps    map[string][]model.Repetition
	err     error
}

func (f *fakeSource) ListProgress(context.Context) ([]model.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeSource) Load(_ context.Context, userKey string) (model.Progress, error) {
	for _, p := range f.records {
		if p.UserKey == userKey {
			return p, nil
		}
	}
	return model.NewProgress(userKey), nil
}

func (f *fakeSource) ListRepetitions(_ context.Context, userKey string, _ int) ([]model.Repetition, error) {
	return f.reps[userKey], nil
}

func sampleSource() *fakeSource {
	return &fakeSource{
		records: []model.Progress{
			{UserKey: "govind", TotalPoints: 20, CompletedSessions: 2, Achievements: []achievement.ID{achievement.FirstSteps}},
			{UserKey: "asha", TotalPoints: 120, CompletedSessions: 12, Achievements: []achievement.ID{achievement.FirstSteps, achievement.Devoted, achievement.Steadfast}},
			{UserKey: "ganesh", TotalPoints: 60, CompletedSessions: 6},
		},
		reps: map[string][]model.Repetition{
			"asha": {{Chars: 90, DurationMs: 30000}, {Chars: 90, DurationMs: 25000}},
		},
	}
}

func TestBoardRanksEntries(t *testing.T) {
	m := NewModel(sampleSource(), model.BoardConfig{})
	if len(m.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.entries))
	}
	if m.entries[0].UserKey != "asha" || m.entries[2].UserKey != "govind" {
		t.Fatalf("unexpected order: %+v", m.entries)
	}
	if m.SelectedUser() != "asha" {
		t.Fatalf("expected first row selected, got %q", m.SelectedUser())
	}
}

func TestBoardLimit(t *testing.T) {
	m := NewModel(sampleSource(), model.BoardConfig{Limit: 2})
	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
}

func TestFilterEntriesKeepsRankOrder(t *testing.T) {
	m := NewModel(sampleSource(), model.BoardConfig{})
	got := filterEntries(m.report.Entries, "g")
	if len(got) != 2 || got[0].UserKey != "ganesh" || got[1].UserKey != "govind" {
		t.Fatalf("unexpected filtered entries: %+v", got)
	}
	if all := filterEntries(m.report.Entries, " "); len(all) != 3 {
		t.Fatalf("blank filter must keep all entries")
	}
}

func TestFilterModeNarrowsTable(t *testing.T) {
	m := NewModel(sampleSource(), model.BoardConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gov")})
	if len(m.entries) != 1 || m.entries[0].UserKey != "govind" {
		t.Fatalf("unexpected entries: %+v", m.entries)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || len(m.entries) != 3 {
		t.Fatalf("expected filter cleared, mode=%v entries=%d", m.filterMode, len(m.entries))
	}
}

func TestProgressTabShowsSelectedUser(t *testing.T) {
	m := NewModel(sampleSource(), model.BoardConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabProgress {
		t.Fatalf("expected progress tab, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "User: asha") || !strings.Contains(view, "Repetitions: 2") {
		t.Fatalf("progress view missing details:\n%s", view)
	}
}

func TestRefreshErrorIsReported(t *testing.T) {
	src := sampleSource()
	m := NewModel(src, model.BoardConfig{})
	src.err = errors.New("database is locked")
	m.Update(tickMsg{})
	if !strings.Contains(m.errMsg, "locked") {
		t.Fatalf("expected refresh error, got %q", m.errMsg)
	}
	if len(m.entries) != 3 {
		t.Fatalf("stale entries must survive a failed refresh")
	}
}
