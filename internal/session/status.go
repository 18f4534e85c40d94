package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
)

const (
	truncator    = "…"
	selectedNote = "+"
	// defaultGerund is shown for running tasks that have no progress.
	defaultGerund = "processing"
)

// ProgressView is what the UI shows about the work running on a sheet.
type ProgressView struct {
	// Active is true when any task is running on the sheet.
	Active bool
	// Percent is the done percentage, -1 when indeterminate.
	Percent int
	Gerund  string
	Tasks   int
}

// Progress returns the progress of the tasks running on the sheet.
func (s *Session) Progress(sh *model.Sheet) ProgressView {
	v := ProgressView{Percent: -1}
	if sh == nil {
		return v
	}

	var current, total int
	for _, t := range s.runner.ListActive() {
		if t.SheetID != sh.ID() {
			continue
		}
		v.Active = true
		v.Tasks++
		if v.Gerund == "" {
			v.Gerund = t.Gerund
		}
		if t.Total > 0 {
			current += t.Current
			total += t.Total
		}
	}

	if !v.Active {
		return v
	}
	if v.Gerund == "" {
		v.Gerund = defaultGerund
	}
	if total > 0 {
		v.Percent = current * 100 / total
	}

	return v
}

// LeftStatus returns the left side of the status line: the sheet position and
// name followed by the live statuses.
func (s *Session) LeftStatus(sh *model.Sheet) string {
	var b strings.Builder
	if sh != nil {
		fmt.Fprintf(&b, "%d› %s| ", s.sheetIndex(sh), sh.Name())
	}

	msgs := []string{}
	for _, m := range s.status.Live() {
		msgs = append(msgs, m.Text())
	}
	b.WriteString(strings.Join(msgs, s.opts.StatusSeparator))

	lstatus := b.String()
	if s.opts.LeftStatusMax > 0 {
		lstatus = middleTruncate(lstatus, s.opts.LeftStatusMax/2)
	}
	return lstatus
}

// RightStatus returns the right side of the status line: running work, pending
// keystrokes, running command, number of rows, modified mark and selected rows.
func (s *Session) RightStatus(sh *model.Sheet) string {
	if sh == nil {
		return ""
	}

	thread := ""
	if p := s.Progress(sh); p.Active {
		pct := ""
		if p.Percent >= 0 {
			pct = fmt.Sprintf("%2d%% ", p.Percent)
		}
		thread = fmt.Sprintf("%s%s…", pct, p.Gerund)
		if p.Tasks > 1 {
			thread = fmt.Sprintf("[%d] %s", p.Tasks, thread)
		}
	}

	keys := ""
	if sh == s.Active() {
		keys = s.Keystrokes()
	}

	modified := ""
	if sh.Modified() {
		modified = " [M]"
	}

	selected := ""
	if n := sh.NSelected(); n > 0 {
		selected = fmt.Sprintf(" %s%d", selectedNote, n)
	}

	r := fmt.Sprintf("%s %s   %s  %9d %s%s%s", thread, keys, sh.LongName(), sh.NRows(), sh.RowType(), modified, selected)
	return strings.TrimSpace(r)
}

func middleTruncate(s string, w int) string {
	rs := []rune(s)
	if len(rs) <= w*2 {
		return s
	}
	return string(rs[:w]) + truncator + string(rs[len(rs)-w:])
}

// Status history sheet column names.
const (
	ColumnPriority = "priority"
	ColumnRepeats  = "nrepeats"
	ColumnMessage  = "message"
	ColumnSource   = "source"
)

// StatusHistorySheet returns the status history as a sheet, most recent first.
func (s *Session) StatusHistorySheet() *model.Sheet {
	sh := model.NewSheet("status_history", ColumnPriority, ColumnRepeats, ColumnMessage, ColumnSource)
	sh.SetRowType("statuses")

	history := s.status.History()
	slices.Reverse(history)
	for _, m := range history {
		sh.AppendRow(m.Priority.String(), m.Repeats, status.Compose(m.Parts, m.Repeats), m.Source)
	}

	return sh
}
