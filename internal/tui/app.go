package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/export"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/snapshot"
	"github.com/sadopc/pmreport/internal/store"
)

// Deps are the collaborators of the TUI.
type Deps struct {
	Store      *store.Store
	Loader     Loader
	Activities ActivitySource
	// ExportDir is used when the user has not set an export directory.
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	ctx       context.Context
	store     *store.Store
	exportDir string
	now       func() time.Time
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	activity  activityModel
	settings  settingsModel

	help   help.Model
	status string
	errMsg bool
}

// NewApp builds the root model and restores the saved view state.
func NewApp(ctx context.Context, d Deps) App {
	h := help.New()
	h.ShowAll = false

	now := d.Now
	if now == nil {
		now = time.Now
	}

	a := App{
		ctx:        ctx,
		store:      d.Store,
		exportDir:  d.ExportDir,
		now:        now,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(ctx, d.Loader, now),
		reports:    newReportsModel(ctx, d.Loader, now),
		activity:   newActivityModel(ctx, d.Activities, now),
		settings:   newSettingsModel(d.Store),
		help:       h,
	}
	a.restore()
	return a
}

// restore applies saved preferences and view state. Unreadable or stale
// values fall back to defaults.
func (a *App) restore() {
	logger := zerolog.Ctx(a.ctx)

	prefs, err := a.store.Preferences()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read preferences")
	}
	a.applyPrefs(prefs)
	if p, err := snapshot.ParsePreset(prefs.DefaultPreset); err == nil && p != snapshot.PresetCustom {
		a.reports.preset = p
	}

	vs, err := a.store.LoadViewState()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to restore view state")
		return
	}
	a.activeView = parseView(vs.ActiveView)
	if t, err := report.ParseType(vs.ReportType); err == nil {
		a.reports.reportType = t
	}
	if p, err := snapshot.ParsePreset(vs.Preset); err == nil && vs.Preset != "" {
		if p != snapshot.PresetCustom {
			a.reports.preset = p
		} else if dr, err := snapshot.ParseDateRange(vs.From, vs.To); err == nil {
			a.reports.preset = p
			a.reports.custom = dr
		}
	}
	a.activity.filter = vs.ActivityProject
}

func (a *App) applyPrefs(p store.Preferences) {
	if l, err := activity.ParseLocale(p.Locale); err == nil {
		a.activity.locale = l
	}
	if p.ActivityLimit > 0 {
		a.activity.limit = p.ActivityLimit
	}
}

func (a App) savedState() store.ViewState {
	vs := store.ViewState{
		ActiveView:      viewKeys[a.activeView],
		ReportType:      string(a.reports.reportType),
		Preset:          string(a.reports.preset),
		ActivityProject: a.activity.filter,
	}
	if a.reports.preset == snapshot.PresetCustom {
		vs.From = a.reports.custom.Start.Format("2006-01-02")
		vs.To = a.reports.custom.End.Format("2006-01-02")
	}
	return vs
}

func (a App) persistViewState(vs store.ViewState) tea.Cmd {
	s := a.store
	return func() tea.Msg {
		if err := s.SaveViewState(vs); err != nil {
			return statusMsg{text: fmt.Sprintf("Could not save view state: %v", err), isError: true}
		}
		return nil
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.refreshCurrentView(),
		tickCmd(),
	)
}

// tickCmd re-renders once a minute so relative times stay current.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update persists the view state whenever a message changes it.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := a.savedState()
	model, cmd := a.update(msg)
	next := model.(App)
	if after := next.savedState(); after != before {
		cmd = tea.Batch(cmd, next.persistViewState(after))
	}
	return next, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.activity.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.activeView != viewReports {
				a.setStatus("Switch to Reports to export", true)
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewActivity)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		return a, tickCmd()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus(fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path), false)
		a.exportPicking = false
		return a, a.settings.refresh()

	case settingsSavedMsg:
		a.applyPrefs(msg.prefs)
		a.setStatus("Settings saved", false)
		cmd := tea.Batch(a.settings.refresh(), a.activity.refresh())
		return a, cmd

	// Data messages go to their owning view regardless of which is active.
	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd
	case activityDataMsg:
		var cmd tea.Cmd
		a.activity, cmd = a.activity.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.errMsg = isError
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	cmd := a.refreshCurrentView()
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewReports:
		return a.reports.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// refreshCurrentView must be called on an addressable App; the loading
// views record a new generation.
func (a *App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewReports:
		return a.reports.refresh()
	case viewActivity:
		return a.activity.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewReports:
		content = a.reports.view()
	case viewActivity:
		content = a.activity.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pmreport")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.errMsg {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	loading := ""
	if a.reports.loading && a.activeView == viewReports {
		loading = warningStyle.Render(" ● loading")
	}

	left := footerStyle.Render(helpView)
	right := loading + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.reports.reportType.Title())
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return pickerStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the active report's export rows. The snapshot already
// on screen is used as is; nothing is refetched.
func (a App) doExport(format export.Format) tea.Cmd {
	t := a.reports.reportType
	snap := a.reports.snap
	loaded := a.reports.loaded
	s := a.store
	fallbackDir := a.exportDir
	now := a.now

	return func() tea.Msg {
		if !loaded {
			return statusMsg{text: "Nothing to export", isError: true}
		}
		rows, err := report.ExportRows(t, snap)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dir := fallbackDir
		if prefs, err := s.Preferences(); err == nil && prefs.ExportDir != "" {
			dir = prefs.ExportDir
		}

		path, err := export.ToFile(dir, t, rows, format, now())
		if errors.Is(err, export.ErrNoRows) {
			return statusMsg{text: "Nothing to export", isError: true}
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		if _, err := s.RecordExport(store.ExportRecord{
			ReportType: string(t),
			Format:     string(format),
			Path:       path,
			Rows:       len(rows),
		}); err != nil {
			return statusMsg{text: fmt.Sprintf("Exported to %s, history not saved: %v", path, err), isError: true}
		}

		return exportDoneMsg{path: path, rows: len(rows)}
	}
}
