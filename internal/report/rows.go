package report

import (
	"strconv"

	"github.com/sadopc/pmreport/internal/api"
)

// Row is one derived record. Every row of a given type reports the same
// columns, so a slice of one row type forms a table.
type Row interface {
	Columns() []string
	Values() []string
}

// ProjectRow summarizes one project.
type ProjectRow struct {
	ProjectID      string            `json:"projectId"`
	Name           string            `json:"name"`
	Status         api.ProjectStatus `json:"status"`
	TotalTasks     int               `json:"totalTasks"`
	CompletedTasks int               `json:"completedTasks"`
	Progress       int               `json:"progress"`
	TotalHours     float64           `json:"totalHours"`
}

func (ProjectRow) Columns() []string {
	return []string{"name", "status", "totalTasks", "completedTasks", "progress", "totalHours"}
}

func (r ProjectRow) Values() []string {
	return []string{
		r.Name,
		string(r.Status),
		strconv.Itoa(r.TotalTasks),
		strconv.Itoa(r.CompletedTasks),
		strconv.Itoa(r.Progress),
		formatFloat(r.TotalHours),
	}
}

// Bucket is one enum value and how many tasks carry it.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (Bucket) Columns() []string { return []string{"name", "value"} }

func (b Bucket) Values() []string { return []string{b.Name, strconv.Itoa(b.Value)} }

// Distribution holds the task counts per status and per priority.
type Distribution struct {
	Status   []Bucket `json:"status"`
	Priority []Bucket `json:"priority"`
}

// TimeRow is the hours logged against one project.
type TimeRow struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
}

func (TimeRow) Columns() []string { return []string{"name", "hours"} }

func (r TimeRow) Values() []string { return []string{r.Name, formatFloat(r.Hours)} }

// maxDisplayName is the rune length beyond which chart labels are cut.
const maxDisplayName = 15

// DisplayName shortens long project names for chart labels.
func (r TimeRow) DisplayName() string {
	return Truncate(r.Name, maxDisplayName)
}

// WorkloadRow is the task load of one assignee.
type WorkloadRow struct {
	AssigneeID string  `json:"assigneeId"`
	Name       string  `json:"name"`
	Completed  int     `json:"completed"`
	InProgress int     `json:"inProgress"`
	Todo       int     `json:"todo"`
	Hours      float64 `json:"hours"`
	Total      int     `json:"total"`
}

func (WorkloadRow) Columns() []string {
	return []string{"name", "completed", "inProgress", "todo", "hours", "total"}
}

func (r WorkloadRow) Values() []string {
	return []string{
		r.Name,
		strconv.Itoa(r.Completed),
		strconv.Itoa(r.InProgress),
		strconv.Itoa(r.Todo),
		formatFloat(r.Hours),
		strconv.Itoa(r.Total),
	}
}

// TaskRow is the exported form of a task.
type TaskRow struct {
	Title          string  `json:"title"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	DueDate        string  `json:"due_date"`
	EstimatedHours float64 `json:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours"`
}

func (TaskRow) Columns() []string {
	return []string{"title", "status", "priority", "due_date", "estimated_hours", "actual_hours"}
}

func (r TaskRow) Values() []string {
	return []string{
		r.Title,
		r.Status,
		r.Priority,
		r.DueDate,
		formatFloat(r.EstimatedHours),
		formatFloat(r.ActualHours),
	}
}

// TimeLogRow is the exported form of a time log.
type TimeLogRow struct {
	Date        string  `json:"date"`
	Task        string  `json:"task"`
	Project     string  `json:"project"`
	User        string  `json:"user"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func (TimeLogRow) Columns() []string {
	return []string{"date", "task", "project", "user", "hours", "description"}
}

func (r TimeLogRow) Values() []string {
	return []string{r.Date, r.Task, r.Project, r.User, formatFloat(r.Hours), r.Description}
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rows widens a typed slice to a slice of Row.
func Rows[R Row](rs []R) []Row {
	out := make([]Row, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}
