package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/session"
	"github.com/slok/vgrid/internal/status"
)

func TestSessionLeftStatus(t *testing.T) {
	tests := map[string]struct {
		max       int
		reports   []string
		expStatus string
	}{
		"Without statuses it should only show the sheet": {
			expStatus: "1› people| ",
		},

		"Live statuses should be joined and deduplicated": {
			reports:   []string{"disk slow", "disk slow", "disk full"},
			expStatus: "1› people| [2x] disk slow | disk full",
		},

		"A long status should be truncated in the middle": {
			max:       20,
			reports:   []string{"a very long status message"},
			expStatus: "1› people|…us message",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			o := model.DefaultOptions()
			o.StatusSeparator = " | "
			o.LeftStatusMax = test.max
			s := newSession(t, o)

			s.Push(model.NewSheet("other"))
			sh := model.NewSheet("people")
			s.Push(sh)

			for _, r := range test.reports {
				s.Status().Warning(r)
			}

			assert.Equal(t, test.expStatus, s.LeftStatus(sh))
		})
	}
}

func TestSessionRightStatus(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, model.DefaultOptions())
	sh := model.NewSheet("people", "a")
	sh.AppendRow(1)
	sh.AppendRow(2)
	sh.AppendRow(3)
	s.Push(sh)

	assert.Equal("3 rows", s.RightStatus(sh))

	sh.SetModified(true)
	sh.Select(sh.Rows()[0])
	assert.Equal("3 rows [M] +1", s.RightStatus(sh))

	_, err := s.Exec(context.Background(), "add-row")
	require.NoError(t, err)
	assert.Equal("add row          4 rows [M] +1", s.RightStatus(sh))

	s.Keystroke(context.Background(), "g")
	assert.Equal("g   add row          4 rows [M] +1", s.RightStatus(sh))

	assert.Empty(s.RightStatus(nil))
}

func TestSessionProgress(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	started := make(chan struct{})
	release := make(chan struct{})
	crunch := command.Command{
		Name:  "crunch",
		Async: true,
		Body: func(_ context.Context, c *command.Context, _ []string) error {
			p := c.Task.Progress(4, "crunching")
			defer p.Done()
			p.Advance()
			close(started)
			<-release
			return nil
		},
	}
	idle := command.Command{
		Name:  "idle",
		Async: true,
		Body: func(_ context.Context, c *command.Context, _ []string) error {
			<-release
			return nil
		},
	}

	s := newSession(t, model.DefaultOptions(), crunch, idle)
	sh := model.NewSheet("people", "a")
	other := model.NewSheet("other", "a")
	s.Push(other)
	s.Push(sh)

	assert.Equal(session.ProgressView{Percent: -1}, s.Progress(sh))

	out, err := s.Exec(context.Background(), "crunch")
	require.NoError(err)
	<-started

	assert.Equal(session.ProgressView{Active: true, Percent: 25, Gerund: "crunching", Tasks: 1}, s.Progress(sh))
	assert.Equal("25% crunching…    crunch          0 rows", s.RightStatus(sh))
	assert.Equal(session.ProgressView{Percent: -1}, s.Progress(other))

	_, err = s.Exec(context.Background(), "idle")
	require.NoError(err)
	v := s.Progress(sh)
	assert.Equal(2, v.Tasks)
	assert.Equal(25, v.Percent)

	close(release)
	require.NoError(out.Task.Wait(context.Background()))
	require.NoError(s.Wait(context.Background()))
	assert.False(s.Progress(sh).Active)
}

func TestSessionStatusHistorySheet(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, model.DefaultOptions())
	s.Status().Warning("disk slow")
	s.Status().Warning("disk slow")
	s.Status().Warning("disk slow")
	_ = s.Status().Error("disk full")

	sh := s.StatusHistorySheet()
	assert.Equal("status_history", sh.Name())
	assert.Equal("statuses", sh.RowType())

	d := sh.Data()
	assert.Equal([]string{session.ColumnPriority, session.ColumnRepeats, session.ColumnMessage, session.ColumnSource}, d.Columns)
	assert.Len(d.Rows, 2)
	assert.Equal([]any{status.PriorityError.String(), 1, "disk full"}, d.Rows[0][:3])
	assert.Equal([]any{status.PriorityWarning.String(), 3, "[3x] disk slow"}, d.Rows[1][:3])
	assert.Contains(d.Rows[0][3], "status_test.go")
}
