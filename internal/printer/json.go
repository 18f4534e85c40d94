package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
)

// JSONPrinter prints vgrid information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type sheetOutput struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type sheetListItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	NRows    int       `json:"nrows"`
	NColumns int       `json:"ncolumns"`
	SavedAt  time.Time `json:"saved_at"`
}

type statusItem struct {
	Priority string    `json:"priority"`
	Message  string    `json:"message"`
	Repeats  int       `json:"repeats"`
	Source   string    `json:"source,omitempty"`
	At       time.Time `json:"at"`
}

type taskItem struct {
	ID         string     `json:"id"`
	SheetID    string     `json:"sheet_id,omitempty"`
	Label      string     `json:"label"`
	Status     string     `json:"status"`
	Gerund     string     `json:"gerund,omitempty"`
	Percent    *int       `json:"percent"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type commandItem struct {
	Name  string   `json:"name"`
	Keys  []string `json:"keys"`
	Scope string   `json:"scope"`
	Async bool     `json:"async"`
	Help  string   `json:"help"`
}

type messageOutput struct {
	Message string `json:"message"`
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSheet prints the sheet in JSON format, null cells are JSON nulls.
func (j *JSONPrinter) PrintSheet(d model.SheetData) error {
	out := sheetOutput{Name: d.Name, Columns: d.Columns, Rows: make([][]any, 0, len(d.Rows))}
	for _, r := range d.Rows {
		row := make([]any, len(d.Columns))
		for i, v := range r[:min(len(r), len(row))] {
			if !model.IsNull(v) {
				row[i] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}

	return j.encode(out)
}

// PrintSheetList prints stored sheets in JSON format.
func (j *JSONPrinter) PrintSheetList(sheets []model.SheetSummary) error {
	items := make([]sheetListItem, len(sheets))
	for i, s := range sheets {
		items[i] = sheetListItem{
			ID:       s.ID,
			Name:     s.Name,
			NRows:    s.NRows,
			NColumns: s.NColumns,
			SavedAt:  s.SavedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintStatuses prints status messages in JSON format.
func (j *JSONPrinter) PrintStatuses(msgs []status.Message, withSource bool) error {
	items := make([]statusItem, len(msgs))
	for i, m := range msgs {
		items[i] = statusItem{
			Priority: m.Priority.String(),
			Message:  status.Compose(m.Parts, 1),
			Repeats:  m.Repeats,
			At:       m.At.UTC(),
		}
		if withSource {
			items[i].Source = m.Source
		}
	}

	return j.encode(items)
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []task.Snapshot) error {
	items := make([]taskItem, len(tasks))
	for i, s := range tasks {
		item := taskItem{
			ID:        s.ID,
			SheetID:   s.SheetID,
			Label:     s.Label,
			Status:    string(s.Status),
			StartedAt: s.StartedAt.UTC(),
		}
		if !s.Status.Terminal() {
			item.Gerund = s.Gerund
			if s.Percent >= 0 {
				pct := s.Percent
				item.Percent = &pct
			}
		}
		if s.Err != nil {
			item.Error = s.Err.Error()
		}
		if !s.FinishedAt.IsZero() {
			utcTime := s.FinishedAt.UTC()
			item.FinishedAt = &utcTime
		}
		items[i] = item
	}

	return j.encode(items)
}

// PrintCommands prints the commands in JSON format.
func (j *JSONPrinter) PrintCommands(cmds []CommandInfo) error {
	items := make([]commandItem, len(cmds))
	for i, c := range cmds {
		items[i] = commandItem{Name: c.Name, Keys: c.Keys, Scope: c.Scope, Async: c.Async, Help: c.Help}
		if items[i].Keys == nil {
			items[i].Keys = []string{}
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}
