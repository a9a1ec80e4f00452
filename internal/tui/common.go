package tui

import (
	"context"
	"time"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/snapshot"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewActivity
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Activity", "Settings"}

// viewKeys name the views in the persisted view state.
var viewKeys = []string{"dashboard", "reports", "activity", "settings"}

func parseView(s string) viewState {
	for i, k := range viewKeys {
		if k == s {
			return viewState(i)
		}
	}
	return viewDashboard
}

// Loader builds a snapshot for a date range.
type Loader interface {
	Load(ctx context.Context, r snapshot.DateRange) snapshot.Snapshot
}

// ActivitySource reads the activity feed.
type ActivitySource interface {
	ListActivities(ctx context.Context, q api.ActivityQuery) ([]api.Activity, error)
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
	rows int
}

// --- Helpers ---

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
