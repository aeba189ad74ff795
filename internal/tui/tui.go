// Package tui provides a Bubble Tea viewer for a single focus session.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/focus/internal/report"
	"github.com/fakeyudi/focus/internal/session"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))

	attentiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	otherStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabLog
	tabBreakdown
	tabConfig
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Attention Log", "Breakdown", "Config"}

// ReloadFunc fetches a fresh report for the session being viewed.
type ReloadFunc func() (*report.Report, error)

type reloadedMsg struct {
	report *report.Report
	err    error
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the session viewer.
type Model struct {
	report    *report.Report
	source    string
	reload    ReloadFunc
	reloadErr error
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	newest    bool // attention log order
	// Attention Log tab: cursor position and expanded set
	cursor    int
	expanded  map[int]bool
}

// New creates a viewer for r. source labels the title bar; reload may be nil.
func New(r *report.Report, source string, reload ReloadFunc) Model {
	return Model{
		report:   r,
		source:   source,
		reload:   reload,
		expanded: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabLog {
				m.newest = !m.newest
				m.cursor = 0
				m.expanded = make(map[int]bool)
				m.refreshTab(tabLog)
				m.viewports[tabLog].GotoTop()
			}
		case "r":
			if m.reload != nil {
				reload := m.reload
				return m, func() tea.Msg {
					r, err := reload()
					return reloadedMsg{report: r, err: err}
				}
			}
		case "up", "k":
			if m.activeTab == tabLog && m.cursor > 0 {
				m.cursor--
				m.refreshTab(tabLog)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabLog && m.cursor < len(m.report.Session.Logs)-1 {
				m.cursor++
				m.refreshTab(tabLog)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabLog && len(m.report.Session.Logs) > 0 {
				if m.expanded[m.cursor] {
					delete(m.expanded, m.cursor)
				} else {
					m.expanded[m.cursor] = true
				}
				m.refreshTab(tabLog)
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case reloadedMsg:
		m.reloadErr = msg.err
		if msg.err == nil && msg.report != nil {
			m.report = msg.report
			if n := len(m.report.Session.Logs); m.cursor >= n {
				m.cursor = max(n-1, 0)
			}
		}
		if m.ready {
			for i := tabID(0); i < tabCount; i++ {
				m.refreshTab(i)
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  focus  " + m.source)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
	if m.reload != nil {
		hint += "  r reload"
	}
	if m.activeTab == tabLog {
		hint += "  enter details  s " + m.order()
	}
	if m.reloadErr != nil {
		hint += "  " + errStyle.Render("reload failed")
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) refreshTab(t tabID) {
	m.viewports[t].SetContent(m.renderTab(t))
}

func (m *Model) order() string {
	if m.newest {
		return "newest first"
	}
	return "oldest first"
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabLog:
		return m.renderLog()
	case tabBreakdown:
		return m.renderBreakdown()
	case tabConfig:
		return m.renderConfig()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-16s", label)) + "  " + value + "\n")
}

func stamp(ms int64) string {
	return session.FromMillis(ms).Format("2006-01-02 15:04:05")
}

func (m *Model) renderSummary() string {
	s, sum := m.report.Session, m.report.Summary
	var sb strings.Builder
	sb.WriteString(heading("Session " + s.ID))

	row(&sb, "Started:", stamp(s.StartTime))
	if s.EndTime != nil {
		row(&sb, "Ended:", stamp(*s.EndTime))
	} else {
		row(&sb, "Ended:", attentiveStyle.Render("in progress"))
	}
	row(&sb, "Duration:", report.FormatDuration(sum.DurationMs))

	sb.WriteString(heading("Attention"))
	row(&sb, "Entries:", fmt.Sprintf("%d", sum.Entries))
	if sum.Entries > 0 {
		row(&sb, "Mean confidence:", fmt.Sprintf("%.2f", sum.MeanConfidence))
		row(&sb, "Attentive:", fmt.Sprintf("%.0f%%", sum.AttentiveShare*100))
	}
	return sb.String()
}

// logOrder returns indices into the log in display order.
func (m *Model) logOrder() []int {
	n := len(m.report.Session.Logs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if m.newest {
		logs := m.report.Session.Logs
		sort.SliceStable(idx, func(a, b int) bool { return logs[idx[a]].Timestamp > logs[idx[b]].Timestamp })
	}
	return idx
}

func (m *Model) renderLog() string {
	logs := m.report.Session.Logs
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Attention Log (%d, %s)", len(logs), m.order())))
	if len(logs) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for pos, i := range m.logOrder() {
		e := logs[i]
		toggle := "    "
		if len(e.Metadata) > 0 {
			toggle = dimStyle.Render("  ▶ ")
			if m.expanded[pos] {
				toggle = dimStyle.Render("  ▼ ")
			}
		}
		status := otherStyle.Render(fmt.Sprintf("%-14s", e.Status))
		if e.Status == report.AttentiveStatus {
			status = attentiveStyle.Render(fmt.Sprintf("%-14s", e.Status))
		}
		line := fmt.Sprintf("%s%s  %s  %.2f", toggle, timeStyle.Render(session.FromMillis(e.Timestamp).Format("15:04:05")), status, e.Confidence)
		if pos == m.cursor {
			line = selectedRowStyle.Width(m.width - 2).Render(line)
		}
		sb.WriteString(line + "\n")
		if m.expanded[pos] {
			for _, k := range sortedKeys(e.Metadata) {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("        %s: %v", k, e.Metadata[k])) + "\n")
			}
		}
	}
	return sb.String()
}

func (m *Model) renderBreakdown() string {
	sum := m.report.Summary
	var sb strings.Builder
	sb.WriteString(heading("Status Breakdown"))
	if len(sum.ByStatus) == 0 {
		sb.WriteString(dimStyle.Render("  (no entries)") + "\n")
		return sb.String()
	}
	width := m.width - 36
	if width < 10 {
		width = 10
	}
	for _, c := range sum.ByStatus {
		n := c.Count * width / sum.Entries
		bar := barStyle.Render(strings.Repeat("█", n))
		sb.WriteString(fmt.Sprintf("  %-16s %5d  %s\n", c.Status, c.Count, bar))
	}
	return sb.String()
}

func (m *Model) renderConfig() string {
	c := m.report.Session.Config
	var sb strings.Builder
	sb.WriteString(heading("Configuration"))
	none := dimStyle.Render("(not set)")
	num := func(v float64) string {
		if v == 0 {
			return none
		}
		return fmt.Sprintf("%g min", v)
	}
	row(&sb, "Duration:", num(c.Duration))
	row(&sb, "Break interval:", num(c.BreakInterval))
	if c.Goal != "" {
		row(&sb, "Goal:", c.Goal)
	} else {
		row(&sb, "Goal:", none)
	}
	if len(c.Tags) > 0 {
		row(&sb, "Tags:", strings.Join(c.Tags, ", "))
	} else {
		row(&sb, "Tags:", none)
	}
	return sb.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run starts the viewer for r.
func Run(r *report.Report, source string, reload ReloadFunc) error {
	p := tea.NewProgram(New(r, source, reload), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
