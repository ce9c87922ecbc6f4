package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Table renders a simple table. Gap is placed between adjacent cells,
// so a " | " gap reproduces a classic two-pane layout.
type Table struct {
	Columns     []Column
	Gap         string
	HeaderStyle lipgloss.Style
	RowStyle    lipgloss.Style
}

// NewTable creates a new table with the given columns
func NewTable(columns []Column) *Table {
	return &Table{
		Columns: columns,
		Gap:     " ",
		HeaderStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4")),
		RowStyle: lipgloss.NewStyle(),
	}
}

// RenderHeader renders the table header
func (t *Table) RenderHeader() string {
	var cells []string
	for _, col := range t.Columns {
		cells = append(cells, t.HeaderStyle.Render(fit(col.Title, col.Width, col.Align)))
	}
	return strings.Join(cells, t.Gap)
}

// RenderRow renders a single row
func (t *Table) RenderRow(values []string) string {
	var cells []string
	for i, col := range t.Columns {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells = append(cells, t.RowStyle.Render(fit(value, col.Width, col.Align)))
	}
	return strings.Join(cells, t.Gap)
}

// RenderSeparator renders a separator line
func (t *Table) RenderSeparator() string {
	totalWidth := 0
	for i, col := range t.Columns {
		if i > 0 {
			totalWidth += lipgloss.Width(t.Gap)
		}
		totalWidth += col.Width
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Render(strings.Repeat("─", totalWidth))
}

// fit pads or truncates value to exactly width cells. Width is
// measured visibly so styled values keep their alignment.
func fit(value string, width int, align lipgloss.Position) string {
	if width <= 0 {
		return ""
	}

	visible := lipgloss.Width(value)
	if visible > width {
		// Styled values are left alone rather than cut mid-sequence
		if strings.ContainsRune(value, '\x1b') {
			return value
		}
		runes := []rune(value)
		if len(runes) > width {
			runes = runes[:width]
		}
		return string(runes)
	}

	padding := width - visible
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + value
	case lipgloss.Center:
		left := padding / 2
		return strings.Repeat(" ", left) + value + strings.Repeat(" ", padding-left)
	default:
		return value + strings.Repeat(" ", padding)
	}
}
