package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/japa/internal/mantra"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/scorer"
	"github.com/verte-zerg/japa/internal/session"
)

type memoryPersister struct {
	record model.Progress
}

func (m *memoryPersister) Load(_ context.Context, userKey string) (model.Progress, error) {
	if m.record.UserKey == "" {
		return model.NewProgress(userKey), nil
	}
	return m.record.Clone(), nil
}

func (m *memoryPersister) Save(_ context.Context, p model.Progress) error {
	m.record = p.Clone()
	return nil
}

func newTestModel(t *testing.T, p session.Persister) *Model {
	t.Helper()
	sc := scorer.MustNew(mantra.Builtin(mantra.Roman), mantra.Roman)
	ctrl, warning := session.New(context.Background(), session.Config{
		UserKey:   "tester",
		Scorer:    sc,
		Persister: p,
	})
	return NewModel(ctrl, warning)
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, &memoryPersister{record: model.Progress{UserKey: "tester", TotalPoints: 40, CompletedSessions: 4}})
	typeText(m, "Om")
	m.hasLast = true
	m.lastWPM = 72.4
	out := m.renderFooter()
	if !containsAll(out, []string{"Accuracy 7%", "Count 0/3", "Points 40", "Sessions 4", "Last 72.4 WPM", "Om"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestPasteIsRejected(t *testing.T) {
	m := newTestModel(t, &memoryPersister{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(mantra.Builtin(mantra.Roman)), Paste: true})
	if len(m.inputRunes) != 0 {
		t.Fatalf("pasted input must not be accepted")
	}
	if m.notice != pasteNotice {
		t.Fatalf("expected paste notice, got %q", m.notice)
	}
}

func TestTabAcceptsSuggestion(t *testing.T) {
	m := newTestModel(t, &memoryPersister{})
	typeText(m, "Om bh")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := string(m.inputRunes); got != "Om Bhur " {
		t.Fatalf("unexpected input after tab: %q", got)
	}
	if m.suggestion != "Bhuvah" {
		t.Fatalf("expected next word suggestion, got %q", m.suggestion)
	}
}

func TestThreeRepetitionsCompleteSession(t *testing.T) {
	p := &memoryPersister{}
	m := newTestModel(t, p)
	for i := 0; i < session.RepetitionsPerSession; i++ {
		typeText(m, mantra.Builtin(mantra.Roman))
		if len(m.inputRunes) != 0 {
			t.Fatalf("repetition %d: expected input cleared", i+1)
		}
	}
	if p.record.TotalPoints != session.PointsPerSession {
		t.Fatalf("expected saved points, got %+v", p.record)
	}
	if !strings.Contains(m.toast, "Session complete") || !strings.Contains(m.toast, "First Steps") {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if !m.hasLast {
		t.Fatalf("expected last repetition speed")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
