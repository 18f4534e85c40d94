package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/model"
)

func TestIsNull(t *testing.T) {
	tests := map[string]struct {
		v       any
		expNull bool
	}{
		"nil is null":          {v: nil, expNull: true},
		"empty string is null": {v: "", expNull: true},
		"zero is not null":     {v: 0, expNull: false},
		"text is not null":     {v: "a", expNull: false},
		"false is not null":    {v: false, expNull: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expNull, model.IsNull(test.v))
		})
	}
}

func TestSheetColumns(t *testing.T) {
	tests := map[string]struct {
		actions  func(t *testing.T, s *model.Sheet)
		expNames []string
	}{
		"Adding a column should insert it at the index.": {
			actions: func(t *testing.T, s *model.Sheet) {
				s.AddColumn(1, "x")
			},
			expNames: []string{"a", "x", "b"},
		},
		"Adding a column out of bounds should append it.": {
			actions: func(t *testing.T, s *model.Sheet) {
				s.AddColumn(99, "x")
			},
			expNames: []string{"a", "b", "x"},
		},
		"Removing and restoring a column should keep its cell values.": {
			actions: func(t *testing.T, s *model.Sheet) {
				c, _ := s.ColumnByName("a")
				require.NoError(t, s.RemoveColumn(c.Key))
				require.NoError(t, s.RestoreColumn(0, c))
				assert.Equal(t, []any{1, 3}, s.Values(c.Key))
			},
			expNames: []string{"a", "b"},
		},
		"Restoring an existing column should fail.": {
			actions: func(t *testing.T, s *model.Sheet) {
				c, _ := s.ColumnByName("a")
				assert.ErrorIs(t, s.RestoreColumn(0, c), model.ErrAlreadyExists)
			},
			expNames: []string{"a", "b"},
		},
		"Renaming a column should return the old name.": {
			actions: func(t *testing.T, s *model.Sheet) {
				c, _ := s.ColumnByName("b")
				old, err := s.RenameColumn(c.Key, "z")
				require.NoError(t, err)
				assert.Equal(t, "b", old)
			},
			expNames: []string{"a", "z"},
		},
		"Renaming a missing column should fail.": {
			actions: func(t *testing.T, s *model.Sheet) {
				_, err := s.RenameColumn(42, "z")
				assert.ErrorIs(t, err, model.ErrNotFound)
			},
			expNames: []string{"a", "b"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := model.NewSheet("test", "a", "b")
			s.AppendRow(1, 2)
			s.AppendRow(3, 4)

			test.actions(t, s)

			var names []string
			for _, c := range s.Columns() {
				names = append(names, c.Name)
			}
			assert.Equal(t, test.expNames, names)
		})
	}
}

func TestSheetRows(t *testing.T) {
	assert := assert.New(t)

	s := model.NewSheet("test", "a")
	r0 := s.AppendRow(0)
	r1 := s.AppendRow(1)
	r2 := s.AppendRow(2)
	s.SetCursor(2, 0)
	v0 := s.Version()

	// Insert.
	nr := model.NewRow()
	s.InsertRows(1, nr)
	assert.Equal(4, s.NRows())
	assert.Equal(1, s.RowIndex(nr))
	assert.Greater(s.Version(), v0)

	// Selection is dropped with the removed rows and the cursor is clamped.
	s.Select(r2, r0)
	assert.Equal([]*model.Row{r0, r2}, s.SelectedRows())
	s.SetCursor(3, 0)
	assert.Equal(2, s.RemoveRows(r2, nr))
	assert.Equal([]*model.Row{r0}, s.SelectedRows())
	row, _ := s.Cursor()
	assert.Equal(1, row)

	// Replace.
	old := s.SetRows([]*model.Row{r1})
	assert.Equal([]*model.Row{r0, r1}, old)
	assert.Equal([]any{1}, s.Values(0))
}

func TestSheetData(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := model.NewSheet("test", "a", "b")
	s.AppendRow(1, nil)
	s.AppendRow("x", "y")
	c, _ := s.ColumnByName("b")
	require.NoError(s.RemoveColumn(c.Key))
	s.AddColumn(0, "c")

	d := s.Data()
	assert.Equal(s.ID(), d.ID)
	assert.Equal([]string{"c", "a"}, d.Columns)
	assert.Equal([][]any{{nil, 1}, {nil, "x"}}, d.Rows)

	s2, err := model.NewSheetFromData(d)
	require.NoError(err)
	assert.NotEqual(d.ID, s2.ID())
	assert.Equal("test", s2.Name())
	assert.Equal(d.Rows, s2.Data().Rows)

	_, err = model.NewSheetFromData(model.SheetData{})
	assert.ErrorIs(err, model.ErrNotValid)
}

func TestRowUpdateIsAtomic(t *testing.T) {
	r := model.NewRow()
	r.Update(map[int]any{0: "a", 1: "b"})
	assert.Equal(t, "a", r.Get(0))
	assert.Equal(t, "b", r.Get(1))

	r.Update(map[int]any{0: nil})
	assert.Nil(t, r.Get(0))
}
