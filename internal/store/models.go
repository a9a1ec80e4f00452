package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Preferences are the user-editable settings.
type Preferences struct {
	Locale        string
	DefaultPreset string
	ActivityLimit int
	ExportDir     string // empty means the configured default
}

// ViewState is what the TUI restores on the next start.
type ViewState struct {
	ActiveView      string `json:"active_view"`
	ReportType      string `json:"report_type"`
	Preset          string `json:"preset"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	ActivityProject string `json:"activity_project,omitempty"`
}

// ExportRecord is one file written by an export.
type ExportRecord struct {
	ID         string
	ReportType string
	Format     string
	Path       string
	Rows       int
	CreatedAt  time.Time
}
