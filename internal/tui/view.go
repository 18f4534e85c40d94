package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
)

// chromeLines are the screen lines that are not table rows: title, table header and status line.
const chromeLines = 4

const (
	selectedMark = "+"
	nullCell     = "∅"
)

type styles struct {
	table    table.Styles
	title    lipgloss.Style
	left     lipgloss.Style
	leftFail lipgloss.Style
	right    lipgloss.Style
	prompt   lipgloss.Style
}

func defaultStyles() styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return styles{
		table:    ts,
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		left:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		leftFail: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		right:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
	}
}

func (m Model) View() string {
	sh := m.sess.Active()

	var b strings.Builder
	if sh != nil {
		b.WriteString(m.styles.title.Render(sh.Name()))
	} else {
		b.WriteString(m.styles.title.Render("no sheets"))
	}
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.prompt != nil {
		b.WriteString(m.styles.prompt.Render(m.input.View()))
		return b.String()
	}

	b.WriteString(m.statusLine(sh))
	return b.String()
}

// statusLine renders the left status on the left and the right one aligned to the right.
func (m Model) statusLine(sh *model.Sheet) string {
	leftStyle := m.styles.left
	for _, msg := range m.sess.Status().Live() {
		if msg.Priority >= status.PriorityFail {
			leftStyle = m.styles.leftFail
			break
		}
	}

	left := leftStyle.Render(m.sess.LeftStatus(sh))
	right := m.styles.right.Render(m.sess.RightStatus(sh))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// sheetTable returns the table columns and rows of the sheet. The first column marks
// the selected rows and the cursor column title is bracketed.
func sheetTable(sh *model.Sheet, maxWidth int) ([]table.Column, []table.Row) {
	d := sh.Data()
	_, cursorCol := sh.Cursor()

	cols := make([]table.Column, 0, len(d.Columns)+1)
	cols = append(cols, table.Column{Title: " ", Width: 1})
	for i, name := range d.Columns {
		title := name
		if i == cursorCol {
			title = "[" + name + "]"
		}
		cols = append(cols, table.Column{Title: title, Width: lipgloss.Width(title)})
	}

	srcRows := sh.Rows()
	rows := make([]table.Row, 0, len(d.Rows))
	for i, values := range d.Rows {
		mark := ""
		if i < len(srcRows) && sh.IsSelected(srcRows[i]) {
			mark = selectedMark
		}

		row := make(table.Row, len(cols))
		row[0] = mark
		for j := range d.Columns {
			cell := nullCell
			if j < len(values) && !model.IsNull(values[j]) {
				cell = fmt.Sprint(values[j])
			}
			row[j+1] = cell
			cols[j+1].Width = max(cols[j+1].Width, lipgloss.Width(cell))
		}
		rows = append(rows, row)
	}

	for i := range cols {
		cols[i].Width = min(max(cols[i].Width, 1), maxWidth)
	}

	return cols, rows
}
