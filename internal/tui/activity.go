package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goodsign/monday"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/snapshot"
)

type activityModel struct {
	ctx     context.Context
	source  ActivitySource
	tracker *snapshot.Tracker
	now     func() time.Time
	width   int
	height  int

	locale monday.Locale
	limit  int

	loaded   bool
	err      error
	entries  []api.Activity
	projects []activity.ProjectOption
	filter   string // project id, empty for all
	offset   int
}

func newActivityModel(ctx context.Context, src ActivitySource, now func() time.Time) activityModel {
	return activityModel{
		ctx:     ctx,
		source:  src,
		tracker: snapshot.NewTracker(),
		now:     now,
		locale:  activity.DefaultLocale,
		limit:   50,
	}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type activityDataMsg struct {
	gen     uint64
	entries []api.Activity
	err     error
}

// refresh fetches the unfiltered feed; the project filter is applied when
// rendering so the list of filterable projects stays complete.
func (a *activityModel) refresh() tea.Cmd {
	ctx, gen := a.tracker.Begin(a.ctx)
	src, limit := a.source, a.limit
	return func() tea.Msg {
		entries, err := src.ListActivities(ctx, api.ActivityQuery{Limit: limit})
		return activityDataMsg{gen: gen, entries: entries, err: err}
	}
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDataMsg:
		if !a.tracker.Accept(msg.gen) {
			return a, nil
		}
		a.loaded = true
		a.err = msg.err
		if msg.err != nil {
			return a, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Activity: %v", msg.err), isError: true}
			}
		}
		a.entries = msg.entries
		a.projects = activity.Projects(msg.entries)
		a.offset = 0
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Filter):
			a.filter = a.nextFilter()
			a.offset = 0
			return a, nil
		case key.Matches(msg, keys.Down):
			a.offset++
			return a, nil
		case key.Matches(msg, keys.Up):
			if a.offset > 0 {
				a.offset--
			}
			return a, nil
		case key.Matches(msg, keys.Refresh):
			cmd := a.refresh()
			return a, cmd
		}
	}
	return a, nil
}

// nextFilter cycles all projects, then each project in feed order.
func (a activityModel) nextFilter() string {
	if len(a.projects) == 0 {
		return ""
	}
	if a.filter == "" {
		return a.projects[0].ID
	}
	for i, p := range a.projects {
		if p.ID == a.filter {
			if i+1 < len(a.projects) {
				return a.projects[i+1].ID
			}
			return ""
		}
	}
	return ""
}

func (a activityModel) filterLabel() string {
	if a.filter == "" {
		return "All projects"
	}
	for _, p := range a.projects {
		if p.ID == a.filter {
			return p.Name
		}
	}
	return a.filter
}

// lines renders the grouped feed, one string per line.
func (a activityModel) lines() []string {
	now := a.now()
	buckets := activity.Group(activity.FilterByProject(a.entries, a.filter), now, a.locale)

	var out []string
	for i, b := range buckets {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, highlightStyle.Bold(true).Render(b.Label))
		for _, e := range b.Entries {
			out = append(out, fmt.Sprintf("  %s %s  %s",
				actionDot(e.Action),
				activity.Describe(e),
				mutedStyle.Render(activity.TimeAgo(e.CreatedAt, now, a.locale)),
			))
		}
	}
	return out
}

func (a activityModel) view() string {
	w := a.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Activity"), "  ", mutedStyle.Render(a.filterLabel()),
	)
	nav := mutedStyle.Render("  f: filter project  ↑/↓: scroll  r: refresh")

	var body string
	switch {
	case !a.loaded:
		body = mutedStyle.Render("  Loading...")
	case a.err != nil:
		body = errorStyle.Render("  Failed to load activity: " + a.err.Error())
	default:
		lines := a.lines()
		if len(lines) == 0 {
			body = mutedStyle.Render("  No activity yet")
			break
		}
		visible := max(a.height-8, 5)
		start := min(a.offset, max(len(lines)-visible, 0))
		end := min(start+visible, len(lines))
		body = strings.Join(lines[start:end], "\n")
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav))
}
