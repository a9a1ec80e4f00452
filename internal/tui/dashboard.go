package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/snapshot"
)

type dashboardModel struct {
	ctx     context.Context
	loader  Loader
	tracker *snapshot.Tracker
	now     func() time.Time
	width   int
	height  int

	loaded bool
	snap   snapshot.Snapshot
	stats  report.DashboardStats
}

func newDashboardModel(ctx context.Context, l Loader, now func() time.Time) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		loader:  l,
		tracker: snapshot.NewTracker(),
		now:     now,
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	snap snapshot.Snapshot
}

func (d *dashboardModel) loadData() tea.Cmd {
	dr := snapshot.PresetThisMonth.Range(d.now())
	ctx, gen := d.tracker.Begin(d.ctx)
	loader := d.loader
	return func() tea.Msg {
		s := loader.Load(ctx, dr)
		s.Generation = gen
		return dashboardDataMsg{snap: s}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if !d.tracker.Accept(msg.snap.Generation) {
			return d, nil
		}
		d.snap = msg.snap
		d.stats = report.Dashboard(msg.snap, d.now())
		d.loaded = true
		return d, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			cmd := d.loadData()
			return d, cmd
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if !d.loaded {
		return panelStyle.Width(contentWidth).Render(mutedStyle.Render("Loading..."))
	}

	statsPanel := d.renderStatsPanel(contentWidth)
	projectsPanel := d.renderProjectsPanel(contentWidth)
	tasksPanel := d.renderUrgentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, statsPanel, projectsPanel, tasksPanel)
}

func (d dashboardModel) renderStatsPanel(w int) string {
	st := d.stats
	cards := []struct {
		label string
		value string
	}{
		{"Projects", fmt.Sprintf("%d (%d active)", st.TotalProjects, st.ActiveProjects)},
		{"Tasks", fmt.Sprint(st.TotalTasks)},
		{"Completed", fmt.Sprint(st.CompletedTasks)},
		{"In Progress", fmt.Sprint(st.InProgressTasks)},
		{"Overdue", fmt.Sprint(st.OverdueTasks)},
		{"Teams", fmt.Sprint(st.TotalTeams)},
	}

	var rendered []string
	for _, c := range cards {
		value := cardValueStyle.Render(c.value)
		if c.label == "Overdue" && st.OverdueTasks > 0 {
			value = errorStyle.Bold(true).Render(c.value)
		}
		rendered = append(rendered, cardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(c.label), value),
		))
	}

	rows := []string{titleStyle.Render("Overview")}
	if failed := d.snap.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = f.String()
		}
		rows = append(rows, warningStyle.Render("⚠ Could not load "+strings.Join(names, ", ")))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (d dashboardModel) renderProjectsPanel(w int) string {
	title := titleStyle.Render("Recent Projects")
	if len(d.stats.RecentProjects) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No projects yet")),
		)
	}

	rows := []string{title}
	for _, p := range d.stats.RecentProjects {
		rows = append(rows, fmt.Sprintf("  %s %-28s %s",
			statusDot(p.Status.Canonical()),
			report.Truncate(p.Name, 28),
			mutedStyle.Render(p.Status.Canonical().Label()),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderUrgentPanel(w int) string {
	title := titleStyle.Render("Urgent Tasks")
	if len(d.stats.UrgentTasks) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Nothing urgent")),
		)
	}

	now := d.now()
	rows := []string{title}
	for _, t := range d.stats.UrgentTasks {
		due := mutedStyle.Render("no due date")
		if t.DueDate != nil {
			due = mutedStyle.Render("due " + t.DueDate.Format("Jan 02"))
			if t.DueDate.Before(now) {
				due = errorStyle.Render("overdue " + t.DueDate.Format("Jan 02"))
			}
		}
		prio := warningStyle.Render(t.Priority.Canonical().Label())
		if t.Priority.Canonical() == api.PriorityCritical {
			prio = errorStyle.Render(t.Priority.Canonical().Label())
		}
		rows = append(rows, fmt.Sprintf("  %-8s %-32s %s", prio, report.Truncate(t.Title, 32), due))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
