// Package activity groups and describes activity-feed entries.
package activity

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"

	"github.com/sadopc/pmreport/internal/api"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
)

// DefaultLocale names weekdays and months in Indonesian.
const DefaultLocale = monday.Locale("id_ID")

// Locales lists the locales offered in settings.
var Locales = []monday.Locale{DefaultLocale, monday.Locale("en_US")}

// ParseLocale accepts one of Locales; an empty string selects the default.
func ParseLocale(s string) (monday.Locale, error) {
	if s == "" {
		return DefaultLocale, nil
	}
	for _, l := range Locales {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

// Bucket is the entries of one calendar day.
type Bucket struct {
	Label   string         `json:"label"`
	Day     string         `json:"day"`
	Entries []api.Activity `json:"entries"`
}

// Group splits entries into one bucket per calendar day, measured in
// now's location. Buckets appear in the order their first entry appears
// in the input and entries keep their input order inside a bucket.
func Group(entries []api.Activity, now time.Time, locale monday.Locale) []Bucket {
	var (
		buckets []Bucket
		byDay   = make(map[string]int)
	)
	for _, e := range entries {
		at := e.CreatedAt.In(now.Location())
		day := at.Format(api.DateLayout)
		i, ok := byDay[day]
		if !ok {
			i = len(buckets)
			byDay[day] = i
			buckets = append(buckets, Bucket{Label: DayLabel(at, now, locale), Day: day})
		}
		buckets[i].Entries = append(buckets[i].Entries, e)
	}
	return buckets
}

// DayLabel names the calendar day of t relative to now.
func DayLabel(t, now time.Time, locale monday.Locale) string {
	t = t.In(now.Location())
	day := t.Format(api.DateLayout)
	switch day {
	case now.Format(api.DateLayout):
		return LabelToday
	case now.AddDate(0, 0, -1).Format(api.DateLayout):
		return LabelYesterday
	}
	return monday.Format(t, "Monday, 2 January", locale)
}

// FilterByProject keeps the entries of one project. An empty id keeps all.
func FilterByProject(entries []api.Activity, projectID string) []api.Activity {
	if projectID == "" {
		return entries
	}
	out := make([]api.Activity, 0, len(entries))
	for _, e := range entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

// ProjectOption is a project that appears in the feed.
type ProjectOption struct {
	ID   string
	Name string
}

// Projects lists the distinct projects referenced by entries, in order of
// first appearance.
func Projects(entries []api.Activity) []ProjectOption {
	seen := make(map[string]bool)
	var out []ProjectOption
	for _, e := range entries {
		if e.ProjectID == "" || seen[e.ProjectID] {
			continue
		}
		seen[e.ProjectID] = true
		name := e.ProjectName
		if name == "" {
			name = e.ProjectID
		}
		out = append(out, ProjectOption{ID: e.ProjectID, Name: name})
	}
	return out
}
