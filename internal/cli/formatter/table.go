package formatter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

type column struct {
	title   string
	width   int
	numeric bool
}

// RenderTable lays out report rows under a header and a rule. Column keys
// such as "totalHours" or "due_date" are shown as "TOTAL HOURS" and
// "DUE DATE". Columns whose filled cells all parse as numbers are right
// aligned. Widths count visible text only.
func RenderTable(keys []string, rows [][]string) string {
	if len(keys) == 0 {
		return ""
	}

	cols := make([]column, len(keys))
	for i, k := range keys {
		title := HeaderLabel(k)
		cols[i] = column{title: title, width: lipgloss.Width(title), numeric: true}
	}
	filled := make([]bool, len(keys))
	for _, row := range rows {
		for i := range cols {
			cell := cellAt(row, i)
			if cell == "" {
				continue
			}
			filled[i] = true
			cols[i].width = max(cols[i].width, lipgloss.Width(cell))
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				cols[i].numeric = false
			}
		}
	}
	for i := range cols {
		cols[i].numeric = cols[i].numeric && filled[i]
	}

	var b strings.Builder
	writeLine(&b, cols, func(i int) string { return StyleHeader.Render(cols[i].title) })
	writeLine(&b, cols, func(i int) string { return StyleDim.Render(strings.Repeat("─", cols[i].width)) })
	for _, row := range rows {
		writeLine(&b, cols, func(i int) string { return cellAt(row, i) })
	}
	return b.String()
}

// writeLine pads each cell to its column. Trailing padding is only kept
// when the last column is right aligned.
func writeLine(b *strings.Builder, cols []column, cell func(int) string) {
	last := len(cols) - 1
	for i, c := range cols {
		s := cell(i)
		pad := strings.Repeat(" ", c.width-lipgloss.Width(s))
		switch {
		case c.numeric:
			b.WriteString(pad + s)
		case i == last:
			b.WriteString(s)
		default:
			b.WriteString(s + pad)
		}
		if i < last {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// HeaderLabel turns a column key into an upper-case title, splitting on
// underscores and lower-to-upper case changes.
func HeaderLabel(key string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
		prev = r
	}
	return b.String()
}

// RenderCards renders label/value pairs on one line.
func RenderCards(labels, values []string) string {
	parts := make([]string, 0, len(labels))
	for i, l := range labels {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts = append(parts, StyleDim.Render(l+": ")+StyleBold.Render(v))
	}
	return strings.Join(parts, "   ")
}
