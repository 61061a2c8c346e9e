// Package boardui provides the Bubble Tea leaderboard interface.
package boardui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/stats"
)

const (
	tabLeaderboard = iota
	tabAchievements
	tabProgress
)

const (
	defaultRefresh      = 5 * time.Second
	progressRepetitions = 30
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

type tickMsg time.Time

// Model implements the Bubble Tea leaderboard UI.
type Model struct {
	source stats.Source
	cfg    model.BoardConfig

	report    stats.Report
	entries   []model.LeaderboardEntry
	errMsg    string
	refreshed time.Time

	tabs      []string
	activeTab int
	viewports []viewport.Model
	board     table.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string
}

// NewModel constructs a leaderboard UI model.
func NewModel(source stats.Source, cfg model.BoardConfig) *Model {
	if cfg.Refresh <= 0 {
		cfg.Refresh = defaultRefresh
	}
	m := &Model{
		source: source,
		cfg:    cfg,
		tabs:   []string{"Leaderboard", "Achievements", "Progress"},
	}
	m.filterInput = newFilterInput("Filter: ")
	m.board = table.New(
		table.WithColumns(boardColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.board.SetStyles(boardStyles())
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tickMsg:
		m.refreshReport()
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.filter)
			return m, m.filterInput.Focus()
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			if m.activeTab == tabLeaderboard {
				m.board.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaderboard {
				m.board.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabLeaderboard {
				var cmd tea.Cmd
				m.board, cmd = m.board.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// SelectedUser returns the user the Achievements and Progress tabs describe.
func (m *Model) SelectedUser() string {
	if row := m.board.SelectedRow(); len(row) > 1 {
		return row[1]
	}
	return m.cfg.User
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.board.SetWidth(m.width)
	m.board.SetHeight(max(1, bodyHeight-1))
	m.filterInput.Width = max(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabLeaderboard {
		m.board.Focus()
		return
	}
	m.board.Blur()
	m.loadFocus()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.source, m.SelectedUser(), m.cfg.Limit, progressRepetitions)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.refreshed = time.Now()
	m.applyFilter()
}

// loadFocus reloads the detail of the currently selected user.
func (m *Model) loadFocus() {
	user := m.SelectedUser()
	if user == "" || user == m.report.Progress.UserKey {
		m.renderTabContents()
		return
	}
	ctx := context.Background()
	p, err := m.source.Load(ctx, user)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	reps, err := m.source.ListRepetitions(ctx, user, progressRepetitions)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.report.Progress = p
	m.report.Repetitions = reps
	m.renderTabContents()
}

// applyFilter narrows the table to users matching the fuzzy filter, keeping
// leaderboard order.
func (m *Model) applyFilter() {
	m.entries = filterEntries(m.report.Entries, m.filter)
	selected := m.SelectedUser()
	m.board.SetRows(boardRows(m.entries))
	for i, e := range m.entries {
		if e.UserKey == selected {
			m.board.SetCursor(i)
			break
		}
	}
	m.renderTabContents()
}

type entrySource []model.LeaderboardEntry

func (s entrySource) String(i int) string { return s[i].UserKey }
func (s entrySource) Len() int            { return len(s) }

func filterEntries(entries []model.LeaderboardEntry, pattern string) []model.LeaderboardEntry {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return entries
	}
	matches := fuzzy.FindFrom(pattern, entrySource(entries))
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	sort.Ints(idx)
	out := make([]model.LeaderboardEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, entries[i])
	}
	return out
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filter = ""
		m.filterInput.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != m.filter {
		m.filter = m.filterInput.Value()
		m.applyFilter()
	}
	return m, cmd
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load leaderboard.")
		}
		return
	}
	p := m.report.Progress
	if p.UserKey == "" {
		m.viewports[tabAchievements].SetContent("No user selected.")
		m.viewports[tabProgress].SetContent("No user selected.")
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderAchievements(&buf, p.Achievements); err != nil {
		fmt.Fprintf(&buf, "Failed to render achievements: %v", err)
	}
	m.viewports[tabAchievements].SetContent(headerStyle.Render(p.UserKey) + "\n\n" + strings.TrimRight(buf.String(), "\n"))

	buf.Reset()
	if err := stats.RenderProgress(&buf, p, m.report.Repetitions); err != nil {
		fmt.Fprintf(&buf, "Failed to render progress: %v", err)
	}
	m.viewports[tabProgress].SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderSummary(), m.width)
}

func (m *Model) renderSummary() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	filter := "none"
	if m.filter != "" {
		filter = m.filter
	}
	updated := "never"
	if !m.refreshed.IsZero() {
		updated = humanize.Time(m.refreshed)
	}
	summary := fmt.Sprintf("Practitioners: %d  Filter: %s  Updated: %s", len(m.entries), filter, updated)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Filter: /  Refresh: r  Quit: q")
	if m.filterMode {
		help = headerStyle.Render("enter: keep filter  esc: clear filter")
	}
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab != tabLeaderboard {
		return m.viewports[m.activeTab].View()
	}
	if len(m.entries) == 0 {
		if m.filter != "" {
			return "No practitioners match the filter."
		}
		return "No practitioners yet."
	}
	return tableMutedStyle.Render(m.board.View())
}

func boardColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "User", Width: 20},
		{Title: "Points", Width: 8},
		{Title: "Sessions", Width: 9},
		{Title: "Badges", Width: 14},
		{Title: "Last Active", Width: 16},
	}
}

func boardRows(entries []model.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.Rank),
			e.UserKey,
			humanize.Comma(int64(e.TotalPoints)),
			humanize.Comma(int64(e.CompletedSessions)),
			stats.BadgeIcons(e.Achievements),
			stats.LastActive(e.LastActive),
		})
	}
	return rows
}

func boardStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "user"
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
