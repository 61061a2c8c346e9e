// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/scorer"
	"github.com/verte-zerg/japa/internal/session"
	statsPkg "github.com/verte-zerg/japa/internal/stats"
)

const pasteNotice = "Pasting is disabled. Type the mantra yourself."

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctrl *session.Controller

	width  int
	height int

	targetRunes []rune
	inputRunes  []rune

	accuracy   int
	suggestion string

	lastWPM float64
	hasLast bool

	notice string
	toast  string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	suggestStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	toastStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a practice TUI model around a session controller.
// warning, when non-empty, is shown until the first accepted repetition.
func NewModel(ctrl *session.Controller, warning string) *Model {
	m := &Model{
		ctrl:        ctrl,
		targetRunes: []rune(norm.NFC.String(ctrl.Scorer().Target())),
		notice:      warning,
	}
	m.suggestion = ctrl.Scorer().Suggest("")
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Paste {
			m.notice = pasteNotice
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
			return m, nil
		case tea.KeyCtrlU:
			m.inputRunes = nil
			m.evaluate()
			return m, nil
		case tea.KeyTab:
			m.acceptSuggestion()
			return m, nil
		case tea.KeySpace:
			m.handleRunes([]rune{' '})
			return m, nil
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	marks := markTarget(m.targetRunes, string(m.inputRunes), m.ctrl.Scorer().Variant())
	styledRunes := buildStyledRunes(marks)
	if m.width == 0 || m.height == 0 {
		return joinStyled(styledRunes) + "\n" + m.renderFooter()
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	typed := wrapStyledRunes(buildInputRunes(m.inputRunes), contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped + "\n\n" + typed)

	lines := []string{m.renderFooter()}
	if status := m.renderStatus(); status != "" {
		lines = append(lines, status)
	}
	if m.height < len(lines)+2 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-len(lines), lipgloss.Center, lipgloss.Center, content)
	for i, line := range lines {
		lines[i] = lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, line)
	}
	return body + "\n" + strings.Join(lines, "\n")
}

func (m *Model) handleBackspace() {
	if len(m.inputRunes) == 0 {
		return
	}
	m.inputRunes = m.inputRunes[:len(m.inputRunes)-1]
	m.evaluate()
}

func (m *Model) handleRunes(runes []rune) {
	limit := 2 * len(m.targetRunes)
	for _, r := range runes {
		if len(m.inputRunes) >= limit {
			break
		}
		m.inputRunes = append(m.inputRunes, r)
	}
	m.evaluate()
}

func (m *Model) acceptSuggestion() {
	if m.suggestion == "" {
		return
	}
	m.inputRunes = []rune(scorer.Accept(string(m.inputRunes), m.suggestion))
	m.evaluate()
}

func (m *Model) evaluate() {
	out := m.ctrl.Handle(context.Background(), string(m.inputRunes))
	m.accuracy = out.Accuracy
	m.suggestion = out.Suggestion
	if out.Warning != "" {
		m.notice = out.Warning
	}
	if !out.Accepted {
		return
	}
	m.inputRunes = nil
	m.accuracy = 0
	if out.Repetition != nil {
		m.lastWPM, _ = statsPkg.RepetitionMetrics(out.Repetition.Chars, out.Repetition.DurationMs)
		m.hasLast = true
	}
	if out.Warning == "" {
		m.notice = ""
	}
	if out.SessionCompleted {
		m.toast = sessionToast(out.Unlocked)
	} else {
		m.toast = ""
	}
}

func sessionToast(unlocked []achievement.ID) string {
	msg := fmt.Sprintf("Session complete! +%d points", session.PointsPerSession)
	for _, id := range unlocked {
		if def, ok := achievement.Lookup(id); ok {
			msg += fmt.Sprintf("  %s %s unlocked", def.Icon, def.Name)
		}
	}
	return msg
}

func (m *Model) renderFooter() string {
	p := m.ctrl.Progress()
	segments := []string{
		fmt.Sprintf("Accuracy %d%%", m.accuracy),
		fmt.Sprintf("Count %d/%d", m.ctrl.Count(), session.RepetitionsPerSession),
		fmt.Sprintf("Points %d", p.TotalPoints),
		fmt.Sprintf("Sessions %d", p.CompletedSessions),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM", m.lastWPM))
	}
	if m.ctrl.LocalOnly() {
		segments = append(segments, "local only")
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.suggestion != "" {
		footer += footerStyle.Render("  Tab ") + suggestStyle.Render(m.suggestion)
	}
	return footer
}

func (m *Model) renderStatus() string {
	switch {
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	case m.toast != "":
		return toastStyle.Render(m.toast)
	default:
		return ""
	}
}
