package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
)

// DefaultRowType is the row type label used when a sheet doesn't set one.
const DefaultRowType = "rows"

// IsNull reports if a cell value is considered empty.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Column is a sheet column. The key is stable for the lifetime of the sheet
// and is what rows use to address their cells, so renames and column
// inserts never move cell data.
type Column struct {
	Key  int
	Name string
}

// Row is a single sheet row. Rows are addressed by identity, the same row can be
// shared by several sheets (e.g. a sample sheet), so the cells have their own lock
// and a single row mutation is always applied atomically.
type Row struct {
	mu    sync.RWMutex
	cells map[int]any
}

// NewRow returns a blank row.
func NewRow() *Row {
	return &Row{cells: map[int]any{}}
}

// Get returns the value of the cell for the column key.
func (r *Row) Get(key int) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cells[key]
}

// Set sets the value of the cell for the column key and returns the previous value.
func (r *Row) Set(key int, v any) (old any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old = r.cells[key]
	if v == nil {
		delete(r.cells, key)
		return old
	}
	r.cells[key] = v
	return old
}

// Update applies all the values at once, readers never observe a partially updated row.
func (r *Row) Update(values map[int]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		if v == nil {
			delete(r.cells, k)
			continue
		}
		r.cells[k] = v
	}
}

// Sheet is the addressable unit of tabular data commands operate on.
//
// Sheets are shared between the interactive loop and any number of background
// tasks, all the structure (rows, columns, cursor, selection) is guarded by the
// sheet lock and accessors return copies. Tasks that need a stable view must
// iterate a snapshot from Rows.
type Sheet struct {
	mu         sync.RWMutex
	id         string
	name       string
	rowType    string
	columns    []Column
	nextColKey int
	rows       []*Row
	cursorRow  int
	cursorCol  int
	selected   map[*Row]struct{}
	longName   string
	modified   bool
	version    uint64
}

// NewSheet returns a new empty sheet with the named columns.
func NewSheet(name string, columns ...string) *Sheet {
	s := &Sheet{
		id:       ulid.Make().String(),
		name:     name,
		rowType:  DefaultRowType,
		selected: map[*Row]struct{}{},
	}
	for _, c := range columns {
		s.columns = append(s.columns, Column{Key: s.nextColKey, Name: c})
		s.nextColKey++
	}

	return s
}

// ID returns the unique sheet ID.
func (s *Sheet) ID() string { return s.id }

// Name returns the sheet name.
func (s *Sheet) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName renames the sheet.
func (s *Sheet) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.touch()
}

// RowType returns the label used to describe the rows (e.g "rows", "statuses").
func (s *Sheet) RowType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowType
}

// SetRowType sets the label used to describe the rows.
func (s *Sheet) SetRowType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowType = t
}

// LongName returns the long name of the last command executed on the sheet.
func (s *Sheet) LongName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.longName
}

// SetLongName publishes the long name of the command being executed on the sheet.
func (s *Sheet) SetLongName(n string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.longName = n
}

// Modified reports if the sheet has been mutated since it was loaded or saved.
func (s *Sheet) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// SetModified sets the modified flag.
func (s *Sheet) SetModified(m bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = m
}

// Version is a counter increased on every structural or cell change made through
// the sheet, renderers use it to know when they need to redraw.
func (s *Sheet) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Sheet) touch() { s.version++ }

// Columns returns a copy of the sheet columns in display order.
func (s *Sheet) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.columns)
}

// NColumns returns the number of columns.
func (s *Sheet) NColumns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.columns)
}

// Column returns the column with the key.
func (s *Sheet) Column(key int) (Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.columnIndex(key)
	if i < 0 {
		return Column{}, false
	}
	return s.columns[i], true
}

// ColumnByName returns the first column with the name.
func (s *Sheet) ColumnByName(name string) (Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (s *Sheet) columnIndex(key int) int {
	return slices.IndexFunc(s.columns, func(c Column) bool { return c.Key == key })
}

// AddColumn inserts a new column at idx (clamped) and returns it.
func (s *Sheet) AddColumn(idx int, name string) Column {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx = clamp(idx, 0, len(s.columns))
	c := Column{Key: s.nextColKey, Name: name}
	s.nextColKey++
	s.columns = slices.Insert(s.columns, idx, c)
	s.touch()

	return c
}

// RemoveColumn removes the column with the key, cell values are kept on the rows
// so adding the column back restores them.
func (s *Sheet) RemoveColumn(key int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.columnIndex(key)
	if i < 0 {
		return fmt.Errorf("column %d: %w", key, ErrNotFound)
	}
	s.columns = slices.Delete(s.columns, i, i+1)
	if s.cursorCol >= len(s.columns) {
		s.cursorCol = max(len(s.columns)-1, 0)
	}
	s.touch()

	return nil
}

// RestoreColumn puts back a removed column at idx keeping its key.
func (s *Sheet) RestoreColumn(idx int, c Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.columnIndex(c.Key) >= 0 {
		return fmt.Errorf("column %d: %w", c.Key, ErrAlreadyExists)
	}
	idx = clamp(idx, 0, len(s.columns))
	s.columns = slices.Insert(s.columns, idx, c)
	s.touch()

	return nil
}

// RenameColumn renames the column with the key and returns its old name.
func (s *Sheet) RenameColumn(key int, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.columnIndex(key)
	if i < 0 {
		return "", fmt.Errorf("column %d: %w", key, ErrNotFound)
	}
	old := s.columns[i].Name
	s.columns[i].Name = name
	s.touch()

	return old, nil
}

// Rows returns a snapshot of the row collection.
func (s *Sheet) Rows() []*Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

// NRows returns the number of rows.
func (s *Sheet) NRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Row returns the row at idx.
func (s *Sheet) Row(idx int) (*Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.rows) {
		return nil, false
	}
	return s.rows[idx], true
}

// RowIndex returns the index of the row or -1.
func (s *Sheet) RowIndex(r *Row) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Index(s.rows, r)
}

// AppendRow appends a row with the values in column order and returns it.
func (s *Sheet) AppendRow(values ...any) *Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := NewRow()
	for i, v := range values {
		if i >= len(s.columns) || v == nil {
			continue
		}
		r.cells[s.columns[i].Key] = v
	}
	s.rows = append(s.rows, r)
	s.touch()

	return r
}

// InsertRows inserts the rows at idx (clamped).
func (s *Sheet) InsertRows(idx int, rows ...*Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx = clamp(idx, 0, len(s.rows))
	s.rows = slices.Insert(s.rows, idx, rows...)
	s.touch()
}

// RemoveRows removes the rows from the sheet and returns how many were removed.
func (s *Sheet) RemoveRows(rows ...*Row) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := make(map[*Row]struct{}, len(rows))
	for _, r := range rows {
		rm[r] = struct{}{}
	}
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, func(r *Row) bool {
		_, ok := rm[r]
		return ok
	})
	for r := range rm {
		delete(s.selected, r)
	}
	s.clampCursor()
	s.touch()

	return before - len(s.rows)
}

// SetRows replaces the whole row collection and returns the previous one.
func (s *Sheet) SetRows(rows []*Row) []*Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.rows
	s.rows = slices.Clone(rows)
	s.clampCursor()
	s.touch()

	return old
}

// Value returns the cell value of the row for the column key.
func (s *Sheet) Value(r *Row, key int) any { return r.Get(key) }

// SetValue sets a cell value and returns the previous one.
func (s *Sheet) SetValue(r *Row, key int, v any) any {
	old := r.Set(key, v)
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()

	return old
}

// Values returns the values of a column for all the rows in order.
func (s *Sheet) Values(key int) []any {
	rows := s.Rows()
	vs := make([]any, 0, len(rows))
	for _, r := range rows {
		vs = append(vs, r.Get(key))
	}
	return vs
}

// Cursor returns the cursor row and column indexes.
func (s *Sheet) Cursor() (row, col int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorRow, s.cursorCol
}

// SetCursor moves the cursor, the position is clamped to the sheet bounds.
func (s *Sheet) SetCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorRow, s.cursorCol = row, col
	s.clampCursor()
}

// MoveCursor moves the cursor relative to its current position.
func (s *Sheet) MoveCursor(drow, dcol int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorRow += drow
	s.cursorCol += dcol
	s.clampCursor()
}

func (s *Sheet) clampCursor() {
	s.cursorRow = clamp(s.cursorRow, 0, max(len(s.rows)-1, 0))
	s.cursorCol = clamp(s.cursorCol, 0, max(len(s.columns)-1, 0))
}

// CursorRow returns the row under the cursor.
func (s *Sheet) CursorRow() (*Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cursorRow >= len(s.rows) {
		return nil, false
	}
	return s.rows[s.cursorRow], true
}

// CursorColumn returns the column under the cursor.
func (s *Sheet) CursorColumn() (Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cursorCol >= len(s.columns) {
		return Column{}, false
	}
	return s.columns[s.cursorCol], true
}

// Select adds the rows to the selection and returns the ones that were not selected.
func (s *Sheet) Select(rows ...*Row) []*Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []*Row
	for _, r := range rows {
		if _, ok := s.selected[r]; ok {
			continue
		}
		s.selected[r] = struct{}{}
		changed = append(changed, r)
	}
	s.touch()

	return changed
}

// Unselect removes the rows from the selection and returns the ones that were selected.
func (s *Sheet) Unselect(rows ...*Row) []*Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []*Row
	for _, r := range rows {
		if _, ok := s.selected[r]; !ok {
			continue
		}
		delete(s.selected, r)
		changed = append(changed, r)
	}
	s.touch()

	return changed
}

// IsSelected reports if the row is selected.
func (s *Sheet) IsSelected(r *Row) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[r]
	return ok
}

// SelectedRows returns the selected rows in sheet order.
func (s *Sheet) SelectedRows() []*Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*Row
	for _, r := range s.rows {
		if _, ok := s.selected[r]; ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// NSelected returns the number of selected rows present in the sheet.
func (s *Sheet) NSelected() int {
	return len(s.SelectedRows())
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
