package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
)

// TablePrinter prints vgrid information in a table format.
type TablePrinter struct {
	writer io.Writer
	now    func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, now: time.Now}
}

func (t *TablePrinter) tabwriter() *tabwriter.Writer {
	return tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
}

// PrintSheet prints the sheet rows under a header with the column names.
func (t *TablePrinter) PrintSheet(d model.SheetData) error {
	tw := t.tabwriter()
	defer tw.Flush()

	header := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		header = append(header, strings.ToUpper(c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range d.Rows {
		cells := make([]string, len(d.Columns))
		for i, v := range r[:min(len(r), len(cells))] {
			cells[i] = cellText(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return nil
}

// PrintSheetList prints stored sheets in a table format.
func (t *TablePrinter) PrintSheetList(sheets []model.SheetSummary) error {
	if len(sheets) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tROWS\tCOLUMNS\tSAVED")
	for _, s := range sheets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Name, s.NRows, s.NColumns, TimeAgo(t.now(), s.SavedAt))
	}

	return nil
}

// PrintStatuses prints status messages in a table format.
func (t *TablePrinter) PrintStatuses(msgs []status.Message, withSource bool) error {
	if len(msgs) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	if withSource {
		fmt.Fprintln(tw, "PRIORITY\tMESSAGE\tSOURCE")
	} else {
		fmt.Fprintln(tw, "PRIORITY\tMESSAGE")
	}
	for _, m := range msgs {
		if withSource {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Priority, m.Text(), m.Source)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", m.Priority, m.Text())
	}

	return nil
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []task.Snapshot) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTASK\tSTATUS\tPROGRESS\tTOOK")
	for _, s := range tasks {
		end := s.FinishedAt
		if end.IsZero() {
			end = t.now()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Label, s.Status, progressText(s), FormatDuration(end.Sub(s.StartedAt)))
	}

	return nil
}

// PrintCommands prints the commands in a table format.
func (t *TablePrinter) PrintCommands(cmds []CommandInfo) error {
	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tKEYS\tSCOPE\tBACKGROUND\tHELP")
	for _, c := range cmds {
		bg := "no"
		if c.Async {
			bg = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, strings.Join(c.Keys, " "), c.Scope, bg, c.Help)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func progressText(s task.Snapshot) string {
	if s.Status.Terminal() {
		return "-"
	}
	if s.Percent < 0 {
		return s.Gerund + "…"
	}
	return fmt.Sprintf("%d%% %s…", s.Percent, s.Gerund)
}
