package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Count is one labelled number in a summary
type Count struct {
	Label string
	Value int
	Style *lipgloss.Style // optional label style
}

// NewSummaryTable creates a bordered table with the tool's styling defaults
func NewSummaryTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		BorderColumn(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// CountsTable renders labelled counts as a two-column table
func CountsTable(header string, counts []Count) string {
	t := NewSummaryTable().Headers(header, "Count")
	for _, c := range counts {
		label := c.Label
		if c.Style != nil {
			label = c.Style.Render(label)
		}
		t.Row(label, strconv.Itoa(c.Value))
	}
	return t.Render()
}

// PrintCounts prints a counts table under a header
func PrintCounts(title, header string, counts []Count) {
	Header(title)
	Println(CountsTable(header, counts))
}
