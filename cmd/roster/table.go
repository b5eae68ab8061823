package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	groupStyle  = cellStyle.Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// renderGrid draws g as a bordered table. limit caps the rows shown;
// zero or less shows all of them.
func renderGrid(g core.Grid, limit int) string {
	if g.Empty() {
		return mutedStyle.Render("(no students)")
	}

	rows := g.Rows
	hidden := 0
	if limit > 0 && len(rows) > limit {
		hidden = len(rows) - limit
		rows = rows[:limit]
	}

	groupCol := -1
	for i, h := range g.Headers {
		if h == core.GroupColumn {
			groupCol = i
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(g.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == groupCol:
				return groupStyle
			default:
				return cellStyle
			}
		})

	out := t.String()
	if hidden > 0 {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("... %d more rows", hidden))
	}
	return out
}
