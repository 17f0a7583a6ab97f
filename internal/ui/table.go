package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// column is one column of a list table.
type column struct {
	label string
	width int
	right bool
}

// tableRow is one rendered row: cell text and an optional per-cell style.
type tableRow struct {
	cells  []string
	styles []*lipgloss.Style
}

// renderTable renders a header and the rows that fit in height, keeping the
// selected row visible.
func (m Model) renderTable(cols []column, rows []tableRow, selected, height int, styles Styles) string {
	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = alignCell(c.label, c)
	}
	b.WriteString(styles.MutedText.Bold(true).Render(strings.Join(header, " ")))

	visible := height - 1
	if visible < 1 {
		visible = 1
	}
	start, end := scrollWindow(len(rows), selected, visible)

	selStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Foreground(lipgloss.Color(m.theme.SelectionText))

	for i := start; i < end; i++ {
		row := rows[i]
		b.WriteString("\n")
		if i == selected {
			plain := make([]string, len(cols))
			for j, c := range cols {
				plain[j] = alignCell(cellAt(row.cells, j), c)
			}
			b.WriteString(selStyle.Render(strings.Join(plain, " ")))
			continue
		}
		cells := make([]string, len(cols))
		for j, c := range cols {
			text := alignCell(cellAt(row.cells, j), c)
			style := styles.Text
			if j < len(row.styles) && row.styles[j] != nil {
				style = *row.styles[j]
			}
			cells[j] = style.Render(text)
		}
		b.WriteString(strings.Join(cells, " "))
	}
	return b.String()
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func alignCell(text string, c column) string {
	if c.right {
		return padLeft(text, c.width)
	}
	return padRight(text, c.width)
}

// scrollWindow returns the [start, end) slice of total rows to show so that
// selected stays in view.
func scrollWindow(total, selected, visible int) (int, int) {
	if total <= visible {
		return 0, total
	}
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}

// clampRow keeps a selection index inside [0, n).
func clampRow(row, n int) int {
	if n <= 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

// navigate applies a navigation key to a selection index over n rows. It
// reports false when msg is not a navigation key.
func (m Model) navigate(msg tea.KeyMsg, row, n, page int) (int, bool) {
	if page < 1 {
		page = 1
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		row--
	case key.Matches(msg, m.keys.Down):
		row++
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = n - 1
	case key.Matches(msg, m.keys.PageUp):
		row -= page
	case key.Matches(msg, m.keys.PageDown):
		row += page
	default:
		return row, false
	}
	return clampRow(row, n), true
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	if innerWidth < 4 {
		innerWidth = 4
	}
	title = truncate(title, innerWidth-4)
	titleLen := lipgloss.Width(title)
	leftPad := (innerWidth - titleLen - 2) / 2
	rightPad := innerWidth - titleLen - 2 - leftPad

	top := bg.Render("┌"+strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad)+"┐", borderStyle)
	bottom := bg.Render("└"+strings.Repeat("─", innerWidth)+"┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	boxHeight := height - 2
	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(padded, "\n") + "\n" + bottom
}
