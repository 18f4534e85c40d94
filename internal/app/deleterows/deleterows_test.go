package deleterows_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/app/deleterows"
	"github.com/slok/vgrid/internal/model"
)

func newSheet(n int) *model.Sheet {
	s := model.NewSheet("test", "a")
	for i := range n {
		s.AppendRow(i)
	}
	return s
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		cursor    int
		delete    []int
		expValues []any
		expCursor int
	}{
		"Deleting the cursor row should move the cursor to the next kept row": {
			cursor:    2,
			delete:    []int{2},
			expValues: []any{0, 1, 3, 4},
			expCursor: 2,
		},

		"Deleting rows before the cursor should keep the cursor on the same row": {
			cursor:    3,
			delete:    []int{0, 1},
			expValues: []any{2, 3, 4},
			expCursor: 1,
		},

		"Deleting every row after the cursor should leave the cursor on the last row": {
			cursor:    3,
			delete:    []int{3, 4},
			expValues: []any{0, 1, 2},
			expCursor: 2,
		},

		"Deleting nothing should not change the sheet": {
			cursor:    1,
			delete:    []int{},
			expValues: []any{0, 1, 2, 3, 4},
			expCursor: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			svc, err := deleterows.NewService(deleterows.ServiceConfig{})
			require.NoError(err)

			s := newSheet(5)
			s.SetCursor(test.cursor, 0)
			all := s.Rows()
			rows := []*model.Row{}
			for _, i := range test.delete {
				rows = append(rows, all[i])
			}

			res, err := svc.Run(context.Background(), deleterows.Request{Sheet: s, Rows: rows})
			require.NoError(err)

			assert.Equal(len(test.delete), res.Deleted)
			assert.Equal(test.expValues, s.Values(0))
			crow, _ := s.Cursor()
			assert.Equal(test.expCursor, crow)
		})
	}
}

func TestService_RunUndoShouldRestoreRowsCursorAndSelection(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	svc, err := deleterows.NewService(deleterows.ServiceConfig{})
	require.NoError(err)

	s := newSheet(5)
	s.SetCursor(3, 0)
	all := s.Rows()
	s.Select(all[1], all[3])

	res, err := svc.Run(context.Background(), deleterows.Request{Sheet: s, Rows: s.SelectedRows()})
	require.NoError(err)
	assert.Equal(2, res.Deleted)
	assert.Equal(0, s.NSelected())

	require.NoError(res.Undo(context.Background()))
	assert.Equal(all, s.Rows())
	assert.Equal([]*model.Row{all[1], all[3]}, s.SelectedRows())
	crow, _ := s.Cursor()
	assert.Equal(3, crow)
}
