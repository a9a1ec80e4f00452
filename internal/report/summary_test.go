package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/snapshot"
)

func cardValues(s Summary) map[string]string {
	out := make(map[string]string, len(s.Cards))
	for _, c := range s.Cards {
		out[c.Label] = c.Value
	}
	return out
}

func TestSummarize(t *testing.T) {
	s := sampleSnapshot()

	project := cardValues(Summarize(TypeProject, s))
	assert.Equal(t, "3", project["Total Projects"])
	assert.Equal(t, "1", project["Active"])
	assert.Equal(t, "1", project["Completed"])
	assert.Equal(t, "8.0h", project["Total Hours"])

	task := cardValues(Summarize(TypeTask, s))
	assert.Equal(t, "5", task["Total Tasks"])
	assert.Equal(t, "2", task["Done"])
	assert.Equal(t, "40%", task["Completion Rate"])

	tm := cardValues(Summarize(TypeTime, s))
	assert.Equal(t, "8.0h", tm["Total Hours"])
	assert.Equal(t, "5", tm["Entries"])
	assert.Equal(t, "1.6h", tm["Avg per Entry"])

	wl := cardValues(Summarize(TypeWorkload, s))
	assert.Equal(t, "3", wl["Assignees"])
	assert.Equal(t, "4", wl["Assigned Tasks"])
}

func TestSummarize_EmptySnapshot(t *testing.T) {
	empty := snap(nil, nil, nil)

	assert.Equal(t, "0%", cardValues(Summarize(TypeTask, empty))["Completion Rate"])
	assert.Equal(t, "0.0h", cardValues(Summarize(TypeTime, empty))["Avg per Entry"])
}

func TestDashboard(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	var projects []api.Project
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		projects = append(projects, api.Project{ID: id, Status: api.ProjectActive})
	}
	projects[5].Status = api.ProjectOnHold

	tasks := []api.Task{
		{ID: "1", Status: api.TaskDone, Priority: api.PriorityCritical, DueDate: &past},
		{ID: "2", Status: api.TaskTodo, Priority: api.PriorityHigh, DueDate: &past},
		{ID: "3", Status: api.TaskInProgress, Priority: api.PriorityLow, DueDate: &future},
		{ID: "4", Status: api.TaskBlocked, Priority: api.PriorityCritical},
	}
	teams := []api.Team{{ID: "x"}, {ID: "y"}}
	s := snapshot.New(snapshot.PresetThisMonth.Range(now), projects, tasks, teams, nil)

	st := Dashboard(s, now)

	assert.Equal(t, 6, st.TotalProjects)
	assert.Equal(t, 5, st.ActiveProjects)
	assert.Equal(t, 4, st.TotalTasks)
	assert.Equal(t, 1, st.CompletedTasks)
	assert.Equal(t, 1, st.InProgressTasks)
	assert.Equal(t, 1, st.OverdueTasks, "done tasks are never overdue")
	assert.Equal(t, 2, st.TotalTeams)
	assert.Len(t, st.RecentProjects, 5)
	require.Len(t, st.UrgentTasks, 2)
	assert.Equal(t, "2", st.UrgentTasks[0].ID)
	assert.Equal(t, "4", st.UrgentTasks[1].ID)
}

func TestDashboard_Empty(t *testing.T) {
	st := Dashboard(snap(nil, nil, nil), time.Now())
	assert.Zero(t, st.TotalProjects)
	assert.Empty(t, st.RecentProjects)
	assert.Empty(t, st.UrgentTasks)
}
