package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/goodsign/monday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/pmreport/internal/api"
)

var (
	jakarta = time.FixedZone("WIB", 7*60*60)
	now     = time.Date(2026, 10, 19, 18, 0, 0, 0, jakarta)
	enUS    = monday.Locale("en_US")
)

func entry(id string, at time.Time) api.Activity {
	return api.Activity{ID: id, CreatedAt: at}
}

func ids(entries []api.Activity) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// ============================================================
// Grouping
// ============================================================

func TestGroup_TodayAndYesterday(t *testing.T) {
	entries := []api.Activity{
		entry("a", now),
		entry("b", now.Add(-3*time.Hour)),
		entry("c", now.Add(-25*time.Hour)),
	}

	buckets := Group(entries, now, DefaultLocale)

	require.Len(t, buckets, 2)
	assert.Equal(t, LabelToday, buckets[0].Label)
	assert.Equal(t, []string{"a", "b"}, ids(buckets[0].Entries))
	assert.Equal(t, LabelYesterday, buckets[1].Label)
	assert.Equal(t, []string{"c"}, ids(buckets[1].Entries))
	assert.Equal(t, "2026-10-18", buckets[1].Day)
}

func TestGroup_RelativeLabelsIgnoreLocale(t *testing.T) {
	entries := []api.Activity{entry("a", now), entry("b", now.Add(-24*time.Hour))}

	for _, l := range Locales {
		buckets := Group(entries, now, l)
		require.Len(t, buckets, 2)
		assert.Equal(t, LabelToday, buckets[0].Label, string(l))
		assert.Equal(t, LabelYesterday, buckets[1].Label, string(l))
	}
}

func TestGroup_FirstOccurrenceOrder(t *testing.T) {
	entries := []api.Activity{
		entry("y1", now.Add(-24*time.Hour)),
		entry("t1", now.Add(-1*time.Hour)),
		entry("y2", now.Add(-26*time.Hour)),
		entry("t2", now),
	}

	buckets := Group(entries, now, enUS)

	require.Len(t, buckets, 2)
	assert.Equal(t, LabelYesterday, buckets[0].Label, "bucket order follows first occurrence, not the calendar")
	assert.Equal(t, []string{"y1", "y2"}, ids(buckets[0].Entries))
	assert.Equal(t, []string{"t1", "t2"}, ids(buckets[1].Entries))
}

func TestGroup_OlderDaysUseLocalizedLabel(t *testing.T) {
	entries := []api.Activity{
		entry("a", time.Date(2026, 10, 15, 9, 0, 0, 0, jakarta)),
		entry("b", time.Date(2026, 10, 15, 20, 0, 0, 0, jakarta)),
	}

	buckets := Group(entries, now, enUS)

	require.Len(t, buckets, 1)
	assert.Equal(t, "Thursday, 15 October", buckets[0].Label)
	assert.Len(t, buckets[0].Entries, 2)
}

func TestGroup_UsesLocationOfNow(t *testing.T) {
	// 2026-10-18T20:00Z is already 19 October in Jakarta.
	e := entry("a", time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC))

	buckets := Group([]api.Activity{e}, now, DefaultLocale)

	require.Len(t, buckets, 1)
	assert.Equal(t, LabelToday, buckets[0].Label)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil, now, DefaultLocale))
}

func TestDayLabel_DefaultLocale(t *testing.T) {
	label := DayLabel(time.Date(2026, 10, 15, 9, 0, 0, 0, jakarta), now, DefaultLocale)
	assert.True(t, strings.Contains(label, "15"), label)
	assert.NotEqual(t, LabelToday, label)
}

func TestFilterByProject(t *testing.T) {
	entries := []api.Activity{
		{ID: "1", ProjectID: "p1", ProjectName: "Site"},
		{ID: "2", ProjectID: "p2", ProjectName: "App"},
		{ID: "3", ProjectID: "p1", ProjectName: "Site"},
		{ID: "4"},
	}

	assert.Equal(t, []string{"1", "3"}, ids(FilterByProject(entries, "p1")))
	assert.Len(t, FilterByProject(entries, ""), 4)
	assert.Empty(t, FilterByProject(entries, "p9"))

	opts := Projects(entries)
	assert.Equal(t, []ProjectOption{{ID: "p1", Name: "Site"}, {ID: "p2", Name: "App"}}, opts)
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLocale, l)

	l, err = ParseLocale("en_US")
	require.NoError(t, err)
	assert.Equal(t, enUS, l)

	_, err = ParseLocale("xx_XX")
	assert.Error(t, err)
}

// ============================================================
// Text
// ============================================================

func TestActionText(t *testing.T) {
	tests := []struct {
		name string
		in   api.Activity
		want string
	}{
		{"created", api.Activity{Action: api.ActionCreated, EntityType: api.EntityTask, EntityName: "Login"}, `created task "Login"`},
		{"deleted", api.Activity{Action: api.ActionDeleted, EntityType: api.EntityProject, EntityName: "Old"}, `deleted project "Old"`},
		{"status", api.Activity{
			Action: api.ActionStatusChanged, EntityName: "Login",
			Details: map[string]any{"from": "inprogress", "to": "Review"},
		}, `changed status of "Login" from In Progress to Review`},
		{"assigned", api.Activity{
			Action: api.ActionAssigned, EntityName: "API", Details: map[string]any{"assignee": "Bob"},
		}, `assigned "API" to Bob`},
		{"assigned without details", api.Activity{Action: api.ActionAssigned, EntityName: "API"}, `assigned "API" to ?`},
		{"commented", api.Activity{Action: api.ActionCommented, EntityName: "Bug"}, `commented on "Bug"`},
		{"unknown", api.Activity{Action: "archived", EntityName: "X"}, `performed action on "X"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionText(tt.in))
		})
	}

	assert.Equal(t, `Ana commented on "Bug"`, Describe(api.Activity{UserName: "Ana", Action: api.ActionCommented, EntityName: "Bug"}))
	assert.Equal(t, `Someone commented on "Bug"`, Describe(api.Activity{Action: api.ActionCommented, EntityName: "Bug"}))
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{59 * time.Minute, "59m ago"},
		{3 * time.Hour, "3h ago"},
		{30 * time.Hour, "1d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now, enUS), tt.ago.String())
	}

	assert.Equal(t, "9 Oct", TimeAgo(time.Date(2026, 10, 9, 9, 0, 0, 0, jakarta), now, enUS))
	assert.Equal(t, "1 Sep 2025", TimeAgo(time.Date(2025, 9, 1, 9, 0, 0, 0, jakarta), now, enUS))
}
