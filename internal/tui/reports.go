package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/cli/formatter"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/snapshot"
)

// maxTableRows caps the rows shown under the chart.
const maxTableRows = 12

type reportsModel struct {
	ctx     context.Context
	loader  Loader
	tracker *snapshot.Tracker
	now     func() time.Time
	width   int
	height  int

	reportType report.Type
	preset     snapshot.Preset
	custom     snapshot.DateRange

	snap    snapshot.Snapshot
	loaded  bool
	loading bool
	rows    []report.Row
	summary report.Summary

	chart barchart.Model

	formActive bool
	form       *huh.Form
	fromInput  *string
	toInput    *string
}

func newReportsModel(ctx context.Context, l Loader, now func() time.Time) reportsModel {
	from, to := "", ""
	return reportsModel{
		ctx:        ctx,
		loader:     l,
		tracker:    snapshot.NewTracker(),
		now:        now,
		reportType: report.TypeProject,
		preset:     snapshot.PresetThisMonth,
		chart:      barchart.New(60, 12),
		fromInput:  &from,
		toInput:    &to,
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.loaded {
		r.buildChart()
	}
}

type reportsDataMsg struct {
	snap snapshot.Snapshot
}

func (r reportsModel) dateRange() snapshot.DateRange {
	if r.preset == snapshot.PresetCustom && !r.custom.Start.IsZero() {
		return r.custom
	}
	return r.preset.Range(r.now())
}

// refresh starts a new load generation. Any load still in flight is
// cancelled and its result will be dropped.
func (r *reportsModel) refresh() tea.Cmd {
	dr := r.dateRange()
	ctx, gen := r.tracker.Begin(r.ctx)
	r.loading = true
	loader := r.loader
	return func() tea.Msg {
		s := loader.Load(ctx, dr)
		s.Generation = gen
		return reportsDataMsg{snap: s}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	// Loads finish in the background, form or not.
	if msg, ok := msg.(reportsDataMsg); ok {
		if !r.tracker.Accept(msg.snap.Generation) {
			return r, nil
		}
		r.snap = msg.snap
		r.loaded = true
		r.loading = false
		r.recompute()
		return r, nil
	}

	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.reportType = cycleType(r.reportType, -1)
			r.recompute()
			return r, nil
		case key.Matches(msg, keys.Right):
			r.reportType = cycleType(r.reportType, 1)
			r.recompute()
			return r, nil
		case key.Matches(msg, keys.Preset):
			r.preset = nextPreset(r.preset)
			cmd := r.refresh()
			return r, cmd
		case key.Matches(msg, keys.Custom):
			return r.showForm()
		case key.Matches(msg, keys.Refresh):
			cmd := r.refresh()
			return r, cmd
		}
	}
	return r, nil
}

func cycleType(t report.Type, step int) report.Type {
	n := len(report.Types)
	for i, rt := range report.Types {
		if rt == t {
			return report.Types[((i+step)%n+n)%n]
		}
	}
	return report.TypeProject
}

// nextPreset cycles the relative presets. Leaving a custom range goes back
// to the first preset.
func nextPreset(p snapshot.Preset) snapshot.Preset {
	for i, rp := range snapshot.Presets {
		if rp == p {
			return snapshot.Presets[(i+1)%len(snapshot.Presets)]
		}
	}
	return snapshot.Presets[0]
}

// recompute derives rows, cards and chart from the current snapshot. The
// snapshot is never refetched for a report type switch.
func (r *reportsModel) recompute() {
	if !r.loaded {
		return
	}
	rows, err := report.Aggregate(r.reportType, r.snap)
	if err != nil {
		rows = nil
	}
	r.rows = rows
	r.summary = report.Summarize(r.reportType, r.snap)
	r.buildChart()
}

func (r reportsModel) showForm() (reportsModel, tea.Cmd) {
	dr := r.dateRange()
	*r.fromInput = dr.Start.Format(api.DateLayout)
	*r.toInput = dr.End.Format(api.DateLayout)

	validDate := func(s string) error {
		_, err := api.ParseDate(s)
		return err
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From (YYYY-MM-DD)").Value(r.fromInput).Validate(validDate),
			huh.NewInput().Title("To (YYYY-MM-DD)").Value(r.toInput).Validate(validDate),
		).Title("Custom range"),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r reportsModel) updateForm(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		r.form = nil
		return r.applyCustomRange(*r.fromInput, *r.toInput)
	}

	return r, cmd
}

func (r reportsModel) applyCustomRange(from, to string) (reportsModel, tea.Cmd) {
	dr, err := snapshot.ParseDateRange(from, to)
	if err != nil {
		return r, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Invalid range: %v", err), isError: true}
		}
	}
	r.preset = snapshot.PresetCustom
	r.custom = dr
	cmd := r.refresh()
	return r, cmd
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch r.reportType {
	case report.TypeProject:
		for i, p := range report.ProjectSummary(r.snap) {
			bars = append(bars, barchart.BarData{
				Label:  report.Truncate(p.Name, 10),
				Values: []barchart.BarValue{{Name: "progress", Value: float64(p.Progress), Style: seriesStyle(i)}},
			})
		}
	case report.TypeTask:
		for i, b := range report.TaskDistribution(r.snap).Status {
			bars = append(bars, barchart.BarData{
				Label:  b.Name,
				Values: []barchart.BarValue{{Name: b.Name, Value: float64(b.Value), Style: seriesStyle(i)}},
			})
		}
	case report.TypeTime:
		for i, t := range report.TimeByProject(r.snap) {
			bars = append(bars, barchart.BarData{
				Label:  t.DisplayName(),
				Values: []barchart.BarValue{{Name: t.Name, Value: t.Hours, Style: seriesStyle(i)}},
			})
		}
	case report.TypeWorkload:
		for _, w := range report.Workload(r.snap) {
			bars = append(bars, barchart.BarData{
				Label: report.Truncate(w.Name, 10),
				Values: []barchart.BarValue{
					{Name: "done", Value: float64(w.Completed), Style: seriesStyle(4)},
					{Name: "in progress", Value: float64(w.InProgress), Style: seriesStyle(3)},
					{Name: "todo", Value: float64(w.Todo), Style: seriesStyle(0)},
				},
			})
		}
	}

	if len(bars) == 0 {
		return
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Reports"), "", r.form.View()),
		)
	}

	var tabs []string
	for _, t := range report.Types {
		if t == r.reportType {
			tabs = append(tabs, activeTabStyle.Render(t.Title()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.Title()))
		}
	}
	typeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	dr := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s  %s to %s",
		r.preset.Label(), dr.Start.Format("Jan 02"), dr.End.Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", typeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: report type  p: preset  c: custom range  r: refresh  e: export")

	if !r.loaded {
		msg := "Loading..."
		if !r.loading {
			msg = "Press r to load"
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  "+msg), "", nav),
		)
	}

	parts := []string{header, ""}
	if warn := r.partialWarning(); warn != "" {
		parts = append(parts, warn, "")
	}
	parts = append(parts, r.renderCards(), "")
	if len(r.rows) == 0 {
		parts = append(parts, mutedStyle.Render("  No data for this period"))
	} else {
		parts = append(parts, r.chart.View(), "", r.renderTable())
	}
	parts = append(parts, "", nav)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (r reportsModel) partialWarning() string {
	failed := r.snap.Failed()
	if len(failed) == 0 {
		return ""
	}
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.String()
	}
	return warningStyle.Render("  ⚠ Failed to load " + strings.Join(names, ", ") + "; figures are incomplete")
}

func (r reportsModel) renderCards() string {
	var cards []string
	for _, c := range r.summary.Cards {
		cards = append(cards, cardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(c.Label), cardValueStyle.Render(c.Value)),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (r reportsModel) renderTable() string {
	if len(r.rows) == 0 {
		return ""
	}
	var values [][]string
	for i, row := range r.rows {
		if i == maxTableRows {
			break
		}
		values = append(values, row.Values())
	}
	table := formatter.RenderTable(r.rows[0].Columns(), values)
	if extra := len(r.rows) - maxTableRows; extra > 0 {
		table += mutedStyle.Render(fmt.Sprintf("… and %d more", extra))
	}
	return table
}
