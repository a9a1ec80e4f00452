package formatter

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"name", "status"},
		[][]string{{"Website Redesign", "Active"}, {"API", "Planning"}},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	// text columns share a start offset
	first := strings.Index(lines[2], "Active")
	second := strings.Index(lines[3], "Planning")
	assert.Equal(t, lipgloss.Width(lines[2][:first]), lipgloss.Width(lines[3][:second]))
	assert.Contains(t, lines[1], "─")
}

func TestRenderTable_RightAlignsNumbers(t *testing.T) {
	out := RenderTable(
		[]string{"name", "hours", "total"},
		[][]string{{"Site", "12.5", "3"}, {"App", "3", "10"}},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	end := func(line, cell string) int {
		i := strings.Index(line, cell)
		require.GreaterOrEqual(t, i, 0, line)
		return lipgloss.Width(line[:i+len(cell)])
	}
	assert.Equal(t, end(lines[2], "12.5"), end(lines[3], " 3 ")-1, "hours share a right edge")
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]), "last numeric column is padded")
	assert.True(t, strings.HasSuffix(lines[2], " 3"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "10"), lines[3])
}

func TestRenderTable_MixedColumnStaysLeft(t *testing.T) {
	out := RenderTable([]string{"due_date", "name"}, [][]string{{"12", "a"}, {"2026-10-01", "b"}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "12 "), lines[2])
}

func TestHeaderLabel(t *testing.T) {
	tests := map[string]string{
		"name":            "NAME",
		"totalHours":      "TOTAL HOURS",
		"completedTasks":  "COMPLETED TASKS",
		"estimated_hours": "ESTIMATED HOURS",
		"WHEN":            "WHEN",
	}
	for in, want := range tests {
		assert.Equal(t, want, HeaderLabel(in), in)
	}
}

func TestRenderTable_ShortRows(t *testing.T) {
	out := RenderTable([]string{"a", "b", "c"}, [][]string{{"1"}})
	assert.Contains(t, out, "1")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestRenderCards(t *testing.T) {
	out := RenderCards([]string{"Total", "Done"}, []string{"5", "2"})
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "2")
}
