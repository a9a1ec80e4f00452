package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Priority    Priority      `json:"priority"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	OwnerID     string        `json:"owner_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Task struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	MilestoneID    string     `json:"milestone_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LeadID      string `json:"lead_id,omitempty"`
}

// TimeLog is one logged interval against a task. User, task and project
// names are denormalized by the backend.
type TimeLog struct {
	ID          string  `json:"id"`
	TaskID      string  `json:"task_id"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	TaskName    string  `json:"task_name,omitempty"`
	ProjectName string  `json:"project_name,omitempty"`
	Date        Date    `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description,omitempty"`
}

// UnmarshalJSON clamps negative hours to zero.
func (l *TimeLog) UnmarshalJSON(b []byte) error {
	type plain TimeLog
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Hours < 0 {
		p.Hours = 0
	}
	*l = TimeLog(p)
	return nil
}

type Activity struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id,omitempty"`
	UserName    string         `json:"user_name,omitempty"`
	ProjectID   string         `json:"project_id,omitempty"`
	ProjectName string         `json:"project_name,omitempty"`
	Action      ActivityAction `json:"action"`
	EntityType  EntityType     `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	EntityName  string         `json:"entity_name,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Envelope is the backend's response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day. It decodes from either YYYY-MM-DD or a full
// RFC 3339 timestamp, keeping only the date part.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
