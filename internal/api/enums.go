package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProjectStatus is the lifecycle state of a project. Values use the
// backend's wire spelling.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "onhold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled,
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "inprogress"
	TaskReview     TaskStatus = "Review"
	TaskDone       TaskStatus = "Done"
	TaskBlocked    TaskStatus = "Blocked"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{
	TaskTodo, TaskInProgress, TaskReview, TaskDone, TaskBlocked,
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical,
}

// ActivityAction is what an actor did to an entity.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionDeleted       ActivityAction = "deleted"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionAssigned      ActivityAction = "assigned"
	ActionCommented     ActivityAction = "commented"
)

type EntityType string

const (
	EntityProject   EntityType = "project"
	EntityTask      EntityType = "task"
	EntityTeam      EntityType = "team"
	EntityMilestone EntityType = "milestone"
	EntityComment   EntityType = "comment"
)

// fold lowercases v and drops separators so "In Progress", "in_progress"
// and "inprogress" compare equal.
func fold(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(v)))
}

func ParseProjectStatus(v string) (ProjectStatus, error) {
	for _, s := range ProjectStatuses {
		if fold(string(s)) == fold(v) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown project status %q", v)
}

func ParseTaskStatus(v string) (TaskStatus, error) {
	for _, s := range TaskStatuses {
		if fold(string(s)) == fold(v) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", v)
}

func ParsePriority(v string) (Priority, error) {
	for _, p := range Priorities {
		if fold(string(p)) == fold(v) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", v)
}

// Canonical maps an unset or non-canonical status to its canonical
// value. An unset status counts as Todo, matching the backend default.
func (s TaskStatus) Canonical() TaskStatus {
	if c, err := ParseTaskStatus(string(s)); err == nil {
		return c
	}
	return TaskTodo
}

// Canonical maps an unset priority to Medium, the backend default.
func (p Priority) Canonical() Priority {
	if c, err := ParsePriority(string(p)); err == nil {
		return c
	}
	return PriorityMedium
}

func (s ProjectStatus) Canonical() ProjectStatus {
	if c, err := ParseProjectStatus(string(s)); err == nil {
		return c
	}
	return ProjectPlanning
}

func (s ProjectStatus) Label() string {
	if s.Canonical() == ProjectOnHold {
		return "On Hold"
	}
	return string(s.Canonical())
}

func (s TaskStatus) Label() string {
	if s.Canonical() == TaskInProgress {
		return "In Progress"
	}
	return string(s.Canonical())
}

func (p Priority) Label() string { return string(p.Canonical()) }

func (s *ProjectStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseProjectStatus, s)
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParseTaskStatus, s)
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, ParsePriority, p)
}

func unmarshalEnum[T ~string](b []byte, parse func(string) (T, error), dst *T) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*dst = ""
		return nil
	}
	v, err := parse(*raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
