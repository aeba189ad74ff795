package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/focus/internal/report"
	"github.com/fakeyudi/focus/internal/session"
)

func testReport() *report.Report {
	end := int64(120_000)
	s := &session.Session{
		ID:        "2025-07-03_2007",
		StartTime: 0,
		EndTime:   &end,
		Config:    session.Config{Duration: 25, Goal: "read chapter 3", Tags: []string{"study"}},
		Logs: []session.LogEntry{
			{Timestamp: 1000, Status: "attentive", Confidence: 0.9},
			{Timestamp: 2000, Status: "not_attentive", Confidence: 0.2, Metadata: map[string]any{"reason": "phone"}},
		},
	}
	return report.Build(s, time.UnixMilli(end))
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func TestViewBeforeSize(t *testing.T) {
	if got := New(testReport(), "x", nil).View(); got != "Loading…" {
		t.Errorf("View before size = %q", got)
	}
}

func TestTabsRender(t *testing.T) {
	m := sized(t, New(testReport(), "2025-07-03_2007", nil))
	if v := m.View(); !strings.Contains(v, "Session 2025-07-03_2007") || !strings.Contains(v, "Mean confidence") {
		t.Errorf("summary tab missing content:\n%s", v)
	}

	next, _ := m.Update(key("4"))
	m = next.(Model)
	if m.activeTab != tabConfig || !strings.Contains(m.View(), "read chapter 3") {
		t.Errorf("config tab not shown:\n%s", m.View())
	}

	next, _ = m.Update(key("l"))
	m = next.(Model)
	if m.activeTab != tabSummary {
		t.Errorf("tab should wrap to summary, got %d", m.activeTab)
	}
}

func TestLogExpandAndSort(t *testing.T) {
	m := sized(t, New(testReport(), "x", nil))
	next, _ := m.Update(key("2"))
	m = next.(Model)
	next, _ = m.Update(key("j"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !strings.Contains(m.renderLog(), "reason: phone") {
		t.Errorf("expanded entry should show metadata:\n%s", m.renderLog())
	}

	next, _ = m.Update(key("s"))
	m = next.(Model)
	if !m.newest || m.cursor != 0 || len(m.expanded) != 0 {
		t.Errorf("sort toggle should reset selection: newest=%v cursor=%d expanded=%v", m.newest, m.cursor, m.expanded)
	}
	if order := m.logOrder(); order[0] != 1 {
		t.Errorf("newest-first order = %v", order)
	}
}

func TestReload(t *testing.T) {
	calls := 0
	fresh := testReport()
	fresh.Session.Logs = fresh.Session.Logs[:1]
	m := sized(t, New(testReport(), "x", func() (*report.Report, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("gone")
		}
		return fresh, nil
	}))
	m.cursor = 1

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("reload key returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.report != fresh || m.cursor != 0 || m.reloadErr != nil {
		t.Errorf("after reload: cursor=%d err=%v", m.cursor, m.reloadErr)
	}

	_, cmd = m.Update(key("r"))
	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.reloadErr == nil || m.report != fresh {
		t.Error("failed reload should keep the last report and record the error")
	}
	if !strings.Contains(m.View(), "reload failed") {
		t.Error("status bar should mention the failed reload")
	}
}
