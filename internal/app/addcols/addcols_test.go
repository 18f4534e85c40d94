package addcols_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/app/addcols"
	"github.com/slok/vgrid/internal/model"
)

func colNames(s *model.Sheet) []string {
	names := []string{}
	for _, c := range s.Columns() {
		names = append(names, c.Name)
	}
	return names
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		req      addcols.Request
		expNames []string
		expErr   bool
	}{
		"Adding a column should insert it at the index": {
			req:      addcols.Request{Index: 1, N: 1},
			expNames: []string{"a", "", "b"},
		},

		"Adding multiple columns should number them": {
			req:      addcols.Request{Index: 2, N: 3, Name: "c"},
			expNames: []string{"a", "b", "c1", "c2", "c3"},
		},

		"Adding no columns should fail": {
			req:    addcols.Request{Index: 2, N: 0},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			svc, err := addcols.NewService(addcols.ServiceConfig{})
			require.NoError(err)

			s := model.NewSheet("test", "a", "b")
			req := test.req
			req.Sheet = s
			res, err := svc.Run(context.Background(), req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expNames, colNames(s))

			require.NoError(res.Undo(context.Background()))
			assert.Equal([]string{"a", "b"}, colNames(s))
		})
	}
}
