package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/snapshot"
	"github.com/sadopc/pmreport/internal/store"
)

// recentExports is how many export history entries the settings view lists.
const recentExports = 5

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	prefs      store.Preferences
	exports    []store.ExportRecord
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	locale        *string
	defaultPreset *string
	activityLimit *string
	exportDir     *string
}

func newSettingsModel(s *store.Store) settingsModel {
	l, p, al, ed := "", "", "", ""
	return settingsModel{
		store:         s,
		locale:        &l,
		defaultPreset: &p,
		activityLimit: &al,
		exportDir:     &ed,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	prefs   store.Preferences
	exports []store.ExportRecord
}

// settingsSavedMsg tells the other views that preferences changed.
type settingsSavedMsg struct {
	prefs store.Preferences
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		prefs, _ := s.store.Preferences()
		exports, _ := s.store.ListExports(recentExports)
		return settingsDataMsg{prefs: prefs, exports: exports}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(settingsDataMsg); ok {
		s.prefs = msg.prefs
		s.exports = msg.exports
		return s, nil
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.locale = s.prefs.Locale
	*s.defaultPreset = s.prefs.DefaultPreset
	*s.activityLimit = strconv.Itoa(s.prefs.ActivityLimit)
	*s.exportDir = s.prefs.ExportDir

	var localeOpts []huh.Option[string]
	for _, l := range activity.Locales {
		localeOpts = append(localeOpts, huh.NewOption(string(l), string(l)))
	}
	var presetOpts []huh.Option[string]
	for _, p := range snapshot.Presets {
		presetOpts = append(presetOpts, huh.NewOption(p.Label(), string(p)))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Locale").Options(localeOpts...).Value(s.locale),
			huh.NewSelect[string]().Title("Default date range").Options(presetOpts...).Value(s.defaultPreset),
			huh.NewInput().Title("Activity entries to load").Value(s.activityLimit).Validate(validateLimit),
			huh.NewInput().Title("Export directory").
				Description("Leave empty to use the configured default").
				Value(s.exportDir),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateLimit(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save(s.formValues())
	}

	return s, cmd
}

func (s settingsModel) formValues() store.Preferences {
	limit, err := strconv.Atoi(*s.activityLimit)
	if err != nil || limit <= 0 {
		limit = s.prefs.ActivityLimit
	}
	return store.Preferences{
		Locale:        *s.locale,
		DefaultPreset: *s.defaultPreset,
		ActivityLimit: limit,
		ExportDir:     *s.exportDir,
	}
}

func (s settingsModel) save(p store.Preferences) tea.Cmd {
	return func() tea.Msg {
		if err := s.store.SavePreferences(p); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return settingsSavedMsg{prefs: p}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	exportDir := s.prefs.ExportDir
	if exportDir == "" {
		exportDir = "(configured default)"
	}
	preset, _ := snapshot.ParsePreset(s.prefs.DefaultPreset)

	settings := [][2]string{
		{"Locale", s.prefs.Locale},
		{"Default date range", preset.Label()},
		{"Activity entries", strconv.Itoa(s.prefs.ActivityLimit)},
		{"Export directory", exportDir},
	}

	rows := []string{title, ""}
	for _, kv := range settings {
		label := lipgloss.NewStyle().Width(24).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(kv[1])))
	}

	rows = append(rows, "", titleStyle.Render("Recent exports"))
	if len(s.exports) == 0 {
		rows = append(rows, mutedStyle.Render("  None yet"))
	}
	for _, e := range s.exports {
		rows = append(rows, fmt.Sprintf("  %s  %-8s %-4s %4d rows  %s",
			mutedStyle.Render(e.CreatedAt.Local().Format("Jan 02 15:04")),
			e.ReportType, e.Format, e.Rows, e.Path,
		))
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
