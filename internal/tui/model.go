package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/storage"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

type boardTab int

const (
	tabDay boardTab = iota
	tabLeaders
)

type boardModel struct {
	ctx context.Context
	svc *storage.Service

	width  int
	height int

	state   engine.AppState
	rollups engine.Rollups
	leaders engine.Leaderboards
	record  engine.Record
	dateKey string
	tab     boardTab

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	state engine.AppState
	err   error
}

func newBoardModel(ctx context.Context, svc *storage.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		dateKey: engine.TodayKey(),
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.svc.LoadState()
		return loadedMsg{state: state, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		m.rollups = engine.BuildRollups(&m.state)
		m.leaders = engine.ComputeLeaderboards(&m.state)
		m.record = engine.ComputeRecord(&m.state, engine.PlayerYou, false)
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "tab":
			if m.tab == tabDay {
				m.tab = tabLeaders
			} else {
				m.tab = tabDay
			}
			return m, nil
		case "left", "h":
			m.dateKey = shiftDay(m.dateKey, -1)
			return m, nil
		case "right", "l":
			m.dateKey = shiftDay(m.dateKey, 1)
			return m, nil
		case "t":
			m.dateKey = engine.TodayKey()
			return m, nil
		}
	}
	return m, nil
}

func shiftDay(key string, days int) string {
	t, ok := engine.FromKey(key)
	if !ok {
		return engine.TodayKey()
	}
	return engine.DateKey(t.AddDate(0, 0, days))
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	var main string
	if m.tab == tabLeaders {
		main = m.renderLeaders()
	} else {
		main = m.renderDay()
	}
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "TaskPoints — loading…"
	}
	today := engine.DeriveTodayWithInertia(m.rollups.Daily, engine.TodayKey(), &m.state)
	return fmt.Sprintf("TaskPoints | Today %.2f (base %.2f + inertia %.2f) | Record %d-%d-%d (%s)",
		today.TodayPoints, today.Base, today.Inertia,
		m.record.Wins, m.record.Losses, m.record.Ties, m.record.Basis)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Totals"}
	lines = append(lines, fmt.Sprintf("- days tracked: %d", len(m.rollups.Daily)))
	lines = append(lines, fmt.Sprintf("- completions: %d", len(m.state.Completions)))
	lines = append(lines, fmt.Sprintf("- players: %d", len(m.state.Players)))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ←/→ or h/l: change day")
	lines = append(lines, "- t: today")
	lines = append(lines, "- tab: day/leaders")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderDay() string {
	if m.loading {
		return "Loading…"
	}
	snap := engine.BuildDaySnapshot(m.dateKey, &m.state)
	totals := engine.ComputeDayTotals(snap)

	var out []string
	out = append(out, fmt.Sprintf("%s  (total %.2f)", engine.NiceDate(m.dateKey), totals.Total))
	out = append(out, "")
	if len(snap.Items) == 0 {
		out = append(out, "(no entries)")
	} else {
		for _, item := range snap.Items {
			out = append(out, fmt.Sprintf("%s %-22s %+.2f", ui.CategoryIcon(engine.CategoryLabel(item.Category)), item.Label, item.Points))
		}
	}
	if snap.Inertia != 0 {
		out = append(out, fmt.Sprintf("%s %-22s %+.2f (avg %.2f)", ui.IconInertia, engine.InertiaCategoryLabel, snap.Inertia, snap.InertiaAverage))
	}
	out = append(out, "")
	out = append(out, "By category")
	for _, label := range sortedCategories(totals.ByCategory) {
		v := totals.ByCategory[label]
		if v == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("- %-10s %+.2f", label, v))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderLeaders() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Best days")
	out = append(out, leaderLines(m.leaders.BestDays, 5)...)
	out = append(out, "")
	out = append(out, "Best weeks")
	out = append(out, leaderLines(m.leaders.BestWeeks, 5)...)
	out = append(out, "")
	out = append(out, "Best months")
	out = append(out, leaderLines(m.leaders.BestMonths, 5)...)
	return strings.Join(out, "\n")
}

func leaderLines(entries []engine.LeaderboardEntry, n int) []string {
	if len(entries) == 0 {
		return []string{"(none)"}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	var out []string
	for i, e := range entries {
		out = append(out, fmt.Sprintf("%d. %-12s %.2f", i+1, e.Key, e.Total))
	}
	return out
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func sortedCategories(byCategory map[string]float64) []string {
	labels := make([]string, 0, len(byCategory))
	for label := range byCategory {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
