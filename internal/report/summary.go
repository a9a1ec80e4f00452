package report

import (
	"fmt"
	"time"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/snapshot"
)

// Card is one headline figure shown above a report.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Summary struct {
	Type  Type   `json:"type"`
	Cards []Card `json:"cards"`
}

// Summarize returns the headline figures of report type t.
func Summarize(t Type, s snapshot.Snapshot) Summary {
	sum := Summary{Type: t}
	switch t {
	case TypeProject:
		var active, completed int
		for _, p := range s.Projects {
			switch p.Status.Canonical() {
			case api.ProjectActive:
				active++
			case api.ProjectCompleted:
				completed++
			}
		}
		sum.Cards = []Card{
			{"Total Projects", fmt.Sprint(len(s.Projects))},
			{"Active", fmt.Sprint(active)},
			{"Completed", fmt.Sprint(completed)},
			{"Total Hours", FormatHours(totalHours(s.TimeLogs))},
		}
	case TypeTask:
		done := 0
		for _, t := range s.Tasks {
			if t.Status.Canonical() == api.TaskDone {
				done++
			}
		}
		sum.Cards = []Card{
			{"Total Tasks", fmt.Sprint(len(s.Tasks))},
			{"Done", fmt.Sprint(done)},
			{"Completion Rate", fmt.Sprintf("%d%%", Percent(done, len(s.Tasks)))},
		}
	case TypeTime:
		total := totalHours(s.TimeLogs)
		avg := 0.0
		if len(s.TimeLogs) > 0 {
			avg = total / float64(len(s.TimeLogs))
		}
		sum.Cards = []Card{
			{"Total Hours", FormatHours(total)},
			{"Entries", fmt.Sprint(len(s.TimeLogs))},
			{"Avg per Entry", FormatHours(avg)},
		}
	case TypeWorkload:
		rows := Workload(s)
		assigned, hours := 0, 0.0
		for _, r := range rows {
			assigned += r.Total
			hours += r.Hours
		}
		sum.Cards = []Card{
			{"Assignees", fmt.Sprint(len(rows))},
			{"Assigned Tasks", fmt.Sprint(assigned)},
			{"Hours", FormatHours(hours)},
		}
	}
	return sum
}

// FormatHours renders hours with one decimal, e.g. "4.5h".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func totalHours(logs []api.TimeLog) float64 {
	total := 0.0
	for _, l := range logs {
		total += l.Hours
	}
	return total
}

// DashboardStats is the overview shown on the dashboard.
type DashboardStats struct {
	TotalProjects   int           `json:"totalProjects"`
	ActiveProjects  int           `json:"activeProjects"`
	TotalTasks      int           `json:"totalTasks"`
	CompletedTasks  int           `json:"completedTasks"`
	InProgressTasks int           `json:"inProgressTasks"`
	OverdueTasks    int           `json:"overdueTasks"`
	TotalTeams      int           `json:"totalTeams"`
	RecentProjects  []api.Project `json:"recentProjects"`
	UrgentTasks     []api.Task    `json:"urgentTasks"`
}

// dashboardListLen caps the recent project and urgent task lists.
const dashboardListLen = 5

// Dashboard computes the overview. A task is overdue when its due date is
// before now and it is not done; it is urgent when it is not done and has
// High or Critical priority.
func Dashboard(s snapshot.Snapshot, now time.Time) DashboardStats {
	st := DashboardStats{
		TotalProjects: len(s.Projects),
		TotalTasks:    len(s.Tasks),
		TotalTeams:    len(s.Teams),
	}
	for _, p := range s.Projects {
		if p.Status.Canonical() == api.ProjectActive {
			st.ActiveProjects++
		}
	}
	for _, t := range s.Tasks {
		status := t.Status.Canonical()
		switch status {
		case api.TaskDone:
			st.CompletedTasks++
		case api.TaskInProgress:
			st.InProgressTasks++
		}
		if status == api.TaskDone {
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			st.OverdueTasks++
		}
		switch t.Priority.Canonical() {
		case api.PriorityHigh, api.PriorityCritical:
			if len(st.UrgentTasks) < dashboardListLen {
				st.UrgentTasks = append(st.UrgentTasks, t)
			}
		}
	}
	st.RecentProjects = s.Projects[:min(len(s.Projects), dashboardListLen)]
	return st
}
