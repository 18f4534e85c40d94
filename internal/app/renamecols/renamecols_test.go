package renamecols_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/app/renamecols"
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
		rows       []int
		overwrite  bool
		noSheet    bool
		expNames   []string
		expRenamed int
		expErr     bool
	}{
		"Without overwrite only the unnamed columns should be renamed": {
			rows:       []int{0},
			expNames:   []string{"a", "x", ""},
			expRenamed: 2,
		},

		"With overwrite all the columns should be renamed": {
			rows:       []int{0},
			overwrite:  true,
			expNames:   []string{"1", "x", ""},
			expRenamed: 3,
		},

		"Several rows should join their values": {
			rows:       []int{0, 1},
			overwrite:  true,
			expNames:   []string{"1 2", "x y", " z"},
			expRenamed: 3,
		},

		"Without rows it should fail": {
			expErr: true,
		},

		"Without sheet it should fail": {
			rows:    []int{0},
			noSheet: true,
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			svc, err := renamecols.NewService(renamecols.ServiceConfig{})
			require.NoError(err)

			s := model.NewSheet("test", "a", "", "")
			s.AppendRow(1, "x", nil)
			s.AppendRow(2, "y", "z")

			req := renamecols.Request{Sheet: s, Columns: s.Columns(), Overwrite: test.overwrite}
			for _, i := range test.rows {
				r, _ := s.Row(i)
				req.Rows = append(req.Rows, r)
			}
			if test.noSheet {
				req.Sheet = nil
			}

			res, err := svc.Run(context.Background(), req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expNames, colNames(s))
			assert.Equal(test.expRenamed, res.Renamed)

			require.NoError(res.Undo(context.Background()))
			assert.Equal([]string{"a", "", ""}, colNames(s))
		})
	}
}
