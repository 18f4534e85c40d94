package addrows_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/app/addrows"
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
		sheet     func() *model.Sheet
		req       addrows.Request
		expValues []any
		expErr    bool
	}{
		"Adding a row in the middle should insert it at the index": {
			sheet:     func() *model.Sheet { return newSheet(4) },
			req:       addrows.Request{N: 1, Index: 2},
			expValues: []any{0, 1, nil, 2, 3},
		},

		"Adding multiple rows should insert all of them together": {
			sheet:     func() *model.Sheet { return newSheet(2) },
			req:       addrows.Request{N: 3, Index: 1},
			expValues: []any{0, nil, nil, nil, 1},
		},

		"Adding rows past the end should append them": {
			sheet:     func() *model.Sheet { return newSheet(1) },
			req:       addrows.Request{N: 1, Index: 10},
			expValues: []any{0, nil},
		},

		"Adding zero rows should fail": {
			sheet:  func() *model.Sheet { return newSheet(1) },
			req:    addrows.Request{N: 0},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			svc, err := addrows.NewService(addrows.ServiceConfig{})
			require.NoError(err)

			req := test.req
			req.Sheet = test.sheet()
			res, err := svc.Run(context.Background(), req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			assert.Len(res.Rows, req.N)
			assert.Equal(test.expValues, req.Sheet.Values(0))
		})
	}
}

func TestService_RunUndoShouldRemoveTheRowAndRestoreTheCursor(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	svc, err := addrows.NewService(addrows.ServiceConfig{})
	require.NoError(err)

	s := newSheet(4)
	s.SetCursor(1, 0)
	before := s.Rows()

	res, err := svc.Run(context.Background(), addrows.Request{Sheet: s, N: 1, Index: 2})
	require.NoError(err)
	s.MoveCursor(1, 0)

	added, ok := s.Row(2)
	require.True(ok)
	assert.Same(res.Rows[0], added)

	require.NoError(res.Undo(context.Background()))
	assert.Equal(4, s.NRows())
	assert.Equal(before, s.Rows())
	row, _ := s.Cursor()
	assert.Equal(1, row)
}
