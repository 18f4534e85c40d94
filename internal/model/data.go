package model

import (
	"fmt"
	"time"
)

// SheetData is a detached, serializable copy of a sheet, used by loaders and savers.
type SheetData struct {
	ID      string
	Name    string
	Columns []string
	Rows    [][]any
	SavedAt time.Time
}

// SheetSummary describes a stored sheet without its rows.
type SheetSummary struct {
	ID       string
	Name     string
	NRows    int
	NColumns int
	SavedAt  time.Time
}

// Validate validates the sheet data.
func (d SheetData) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	for i, r := range d.Rows {
		if len(r) > len(d.Columns) {
			return fmt.Errorf("row %d has %d values for %d columns: %w", i, len(r), len(d.Columns), ErrNotValid)
		}
	}
	return nil
}

// Data returns a detached copy of the sheet in column display order.
func (s *Sheet) Data() SheetData {
	cols := s.Columns()
	rows := s.Rows()

	d := SheetData{
		ID:      s.ID(),
		Name:    s.Name(),
		Columns: make([]string, 0, len(cols)),
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, c := range cols {
		d.Columns = append(d.Columns, c.Name)
	}
	for _, r := range rows {
		vals := make([]any, 0, len(cols))
		for _, c := range cols {
			vals = append(vals, r.Get(c.Key))
		}
		d.Rows = append(d.Rows, vals)
	}

	return d
}

// NewSheetFromData returns a new sheet loaded with the data.
func NewSheetFromData(d SheetData) (*Sheet, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	// Every loaded sheet is a new sheet in the session, with its own ID.
	s := NewSheet(d.Name, d.Columns...)
	for _, r := range d.Rows {
		s.AppendRow(r...)
	}

	return s, nil
}

// NewSheetFromRows returns a new sheet that shares the rows (not a copy of them) with
// the same columns, like a view over another sheet.
func NewSheetFromRows(name string, columns []Column, rows []*Row) *Sheet {
	s := NewSheet(name)
	for _, c := range columns {
		s.columns = append(s.columns, c)
		s.nextColKey = max(s.nextColKey, c.Key+1)
	}
	s.rows = append(s.rows, rows...)

	return s
}
