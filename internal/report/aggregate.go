// Package report turns a snapshot into derived report rows. Every function
// here is pure: the same snapshot always yields the same rows.
package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/snapshot"
)

// ErrUnknownType is returned for a report type outside Types.
var ErrUnknownType = errors.New("unknown report type")

// Type selects one of the report views.
type Type string

const (
	TypeProject  Type = "project"
	TypeTask     Type = "task"
	TypeTime     Type = "time"
	TypeWorkload Type = "workload"
)

// Types lists every report type in display order.
var Types = []Type{TypeProject, TypeTask, TypeTime, TypeWorkload}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

func (t Type) Title() string {
	switch t {
	case TypeProject:
		return "Project Summary"
	case TypeTask:
		return "Task Report"
	case TypeTime:
		return "Time Report"
	case TypeWorkload:
		return "Team Workload"
	}
	return string(t)
}

// unknownUser is shown for an assignee with no named time log.
const unknownUser = "Unknown"

// index joins tasks and time logs to the projects that exist in the
// snapshot. Tasks pointing at a missing project and logs pointing at a
// missing task are left out.
type index struct {
	taskProject    map[string]string
	tasksByProject map[string][]api.Task
	hoursByProject map[string]float64
}

func newIndex(s snapshot.Snapshot) index {
	projects := make(map[string]bool, len(s.Projects))
	for _, p := range s.Projects {
		projects[p.ID] = true
	}

	idx := index{
		taskProject:    make(map[string]string, len(s.Tasks)),
		tasksByProject: make(map[string][]api.Task, len(s.Projects)),
		hoursByProject: make(map[string]float64, len(s.Projects)),
	}
	for _, t := range s.Tasks {
		if !projects[t.ProjectID] {
			continue
		}
		idx.taskProject[t.ID] = t.ProjectID
		idx.tasksByProject[t.ProjectID] = append(idx.tasksByProject[t.ProjectID], t)
	}
	for _, l := range s.TimeLogs {
		if pid, ok := idx.taskProject[l.TaskID]; ok {
			idx.hoursByProject[pid] += l.Hours
		}
	}
	return idx
}

// ProjectSummary returns one row per project in snapshot order.
func ProjectSummary(s snapshot.Snapshot) []ProjectRow {
	idx := newIndex(s)
	rows := make([]ProjectRow, 0, len(s.Projects))
	for _, p := range s.Projects {
		row := ProjectRow{
			ProjectID:  p.ID,
			Name:       p.Name,
			Status:     p.Status,
			TotalHours: idx.hoursByProject[p.ID],
		}
		for _, t := range idx.tasksByProject[p.ID] {
			row.TotalTasks++
			if t.Status.Canonical() == api.TaskDone {
				row.CompletedTasks++
			}
		}
		row.Progress = Percent(row.CompletedTasks, row.TotalTasks)
		rows = append(rows, row)
	}
	return rows
}

// TaskDistribution counts every task once by status and once by
// priority. All buckets are present even when their count is zero.
func TaskDistribution(s snapshot.Snapshot) Distribution {
	byStatus := make(map[api.TaskStatus]int, len(api.TaskStatuses))
	byPriority := make(map[api.Priority]int, len(api.Priorities))
	for _, t := range s.Tasks {
		byStatus[t.Status.Canonical()]++
		byPriority[t.Priority.Canonical()]++
	}

	d := Distribution{
		Status:   make([]Bucket, 0, len(api.TaskStatuses)),
		Priority: make([]Bucket, 0, len(api.Priorities)),
	}
	for _, st := range api.TaskStatuses {
		d.Status = append(d.Status, Bucket{Name: st.Label(), Value: byStatus[st]})
	}
	for _, p := range api.Priorities {
		d.Priority = append(d.Priority, Bucket{Name: p.Label(), Value: byPriority[p]})
	}
	return d
}

// TimeByProject returns the hours per project, skipping projects with no
// attributable hours.
func TimeByProject(s snapshot.Snapshot) []TimeRow {
	idx := newIndex(s)
	var rows []TimeRow
	for _, p := range s.Projects {
		hours := idx.hoursByProject[p.ID]
		if hours <= 0 {
			continue
		}
		rows = append(rows, TimeRow{ProjectID: p.ID, Name: p.Name, Hours: hours})
	}
	return rows
}

// Workload returns one row per assignee in order of first assignment.
// Unassigned tasks are ignored. The display name comes from the first
// time log of that user; with no log the name is "Unknown".
func Workload(s snapshot.Snapshot) []WorkloadRow {
	type userLogs struct {
		name  string
		hours float64
	}
	logs := make(map[string]*userLogs)
	for _, l := range s.TimeLogs {
		u, ok := logs[l.UserID]
		if !ok {
			u = &userLogs{name: l.UserName}
			logs[l.UserID] = u
		}
		u.hours += l.Hours
	}

	var (
		order []string
		byID  = make(map[string]*WorkloadRow)
	)
	for _, t := range s.Tasks {
		if t.AssigneeID == "" {
			continue
		}
		row, ok := byID[t.AssigneeID]
		if !ok {
			row = &WorkloadRow{AssigneeID: t.AssigneeID, Name: unknownUser}
			if u, found := logs[t.AssigneeID]; found {
				row.Hours = u.hours
				if u.name != "" {
					row.Name = u.name
				}
			}
			byID[t.AssigneeID] = row
			order = append(order, t.AssigneeID)
		}
		row.Total++
		switch t.Status.Canonical() {
		case api.TaskDone:
			row.Completed++
		case api.TaskInProgress:
			row.InProgress++
		case api.TaskTodo:
			row.Todo++
		}
	}

	rows := make([]WorkloadRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byID[id])
	}
	return rows
}

// Aggregate computes the derived rows of report type t. The task report
// yields the status buckets followed by the priority buckets.
func Aggregate(t Type, s snapshot.Snapshot) ([]Row, error) {
	switch t {
	case TypeProject:
		return Rows(ProjectSummary(s)), nil
	case TypeTask:
		d := TaskDistribution(s)
		return Rows(append(append([]Bucket{}, d.Status...), d.Priority...)), nil
	case TypeTime:
		return Rows(TimeByProject(s)), nil
	case TypeWorkload:
		return Rows(Workload(s)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// ExportRows returns the rows offered for download. Task and time exports
// list the individual tasks and logs; the other types export their
// aggregated rows.
func ExportRows(t Type, s snapshot.Snapshot) ([]Row, error) {
	switch t {
	case TypeProject:
		return Rows(ProjectSummary(s)), nil
	case TypeTask:
		rows := make([]TaskRow, 0, len(s.Tasks))
		for _, task := range s.Tasks {
			row := TaskRow{
				Title:    task.Title,
				Status:   string(task.Status.Canonical()),
				Priority: string(task.Priority.Canonical()),
			}
			if task.DueDate != nil {
				row.DueDate = task.DueDate.Format(api.DateLayout)
			}
			if task.EstimatedHours != nil {
				row.EstimatedHours = *task.EstimatedHours
			}
			if task.ActualHours != nil {
				row.ActualHours = *task.ActualHours
			}
			rows = append(rows, row)
		}
		return Rows(rows), nil
	case TypeTime:
		rows := make([]TimeLogRow, 0, len(s.TimeLogs))
		for _, l := range s.TimeLogs {
			rows = append(rows, TimeLogRow{
				Date:        l.Date.String(),
				Task:        l.TaskName,
				Project:     l.ProjectName,
				User:        l.UserName,
				Hours:       l.Hours,
				Description: l.Description,
			})
		}
		return Rows(rows), nil
	case TypeWorkload:
		return Rows(Workload(s)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Percent is part/total*100 rounded half away from zero, or 0 when total
// is zero.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
