package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/session"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/undo"
)

var addRow = command.Command{
	Name:     "add-row",
	LongName: "add row",
	Keys:     []string{"a"},
	Body: func(_ context.Context, c *command.Context, _ []string) error {
		c.Sheet.AppendRow()
		return nil
	},
	Undo: func(c *command.Context) undo.Func {
		n := c.Sheet.NRows()
		return func(context.Context) error {
			c.Sheet.SetRows(c.Sheet.Rows()[:n])
			return nil
		}
	},
}

var failing = command.Command{
	Name:  "fail",
	Keys:  []string{"gf"},
	Scope: command.ScopeGlobal,
	Body: func(_ context.Context, c *command.Context, _ []string) error {
		return errors.New("boom")
	},
}

func newSession(t *testing.T, opts model.Options, cmds ...command.Command) *session.Session {
	t.Helper()
	require := require.New(t)

	reg := command.NewRegistry()
	require.NoError(reg.Register(append([]command.Command{addRow, failing}, cmds...)...))

	s, err := session.New(session.Config{Registry: reg, Options: opts})
	require.NoError(err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg    func() session.Config
		expErr bool
	}{
		"A valid config should create the session": {
			cfg: func() session.Config {
				return session.Config{Registry: command.NewRegistry()}
			},
		},

		"A missing registry should fail": {
			cfg:    func() session.Config { return session.Config{} },
			expErr: true,
		},

		"Invalid options should fail": {
			cfg: func() session.Config {
				o := model.DefaultOptions()
				o.LeftStatusMax = -1
				return session.Config{Registry: command.NewRegistry(), Options: o}
			},
			expErr: true,
		},

		"A binding to an unknown command should fail": {
			cfg: func() session.Config {
				o := model.DefaultOptions()
				o.Bindings = map[string]string{"x": "missing"}
				return session.Config{Registry: command.NewRegistry(), Options: o}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := session.New(test.cfg())
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, s.ID())
			require.NoError(t, s.Close(context.Background()))
		})
	}
}

func TestSessionSheetStack(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, model.DefaultOptions())
	assert.Nil(s.Active())

	s1 := model.NewSheet("s1")
	s2 := model.NewSheet("s2")
	s3 := model.NewSheet("s1")
	s.Push(s1)
	s.Push(s2)
	s.Push(s3)
	assert.Same(s3, s.Active())

	got, ok := s.SheetByName("s1")
	assert.True(ok)
	assert.Same(s3, got)

	// Pushing a sheet again moves it to the top.
	s.Push(s1)
	assert.Equal([]*model.Sheet{s2, s3, s1}, s.Sheets())

	assert.True(s.Quit(s1))
	assert.False(s.Quit(s1))
	assert.Same(s3, s.Active())

	_, ok = s.SheetByName("missing")
	assert.False(ok)
}

func TestSessionBindingsShouldOverrideKeys(t *testing.T) {
	assert := assert.New(t)

	o := model.DefaultOptions()
	o.Bindings = map[string]string{"x": "add-row"}
	s := newSession(t, o)
	sh := model.NewSheet("s1", "a")
	s.Push(sh)

	_, ran := s.Keystroke(context.Background(), "x")
	assert.True(ran)
	assert.Equal(1, sh.NRows())
}

func TestSessionKeystrokes(t *testing.T) {
	tests := map[string]struct {
		keys        []string
		expRan      []bool
		expPending  string
		expNRows    int
		expLastFail string
	}{
		"A bound key should run its command": {
			keys:     []string{"a"},
			expRan:   []bool{true},
			expNRows: 1,
		},

		"A prefix key should wait for the next one": {
			keys:       []string{"g"},
			expRan:     []bool{false},
			expPending: "g",
		},

		"A prefix and an unbound key should fail": {
			keys:        []string{"g", "z"},
			expRan:      []bool{false, false},
			expLastFail: `no command on "gz"`,
		},

		"An unbound key should fail and not be kept": {
			keys:        []string{"z", "a"},
			expRan:      []bool{false, true},
			expNRows:    1,
			expLastFail: `no command on "z"`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			s := newSession(t, model.DefaultOptions())
			sh := model.NewSheet("s1", "a")
			s.Push(sh)

			for i, k := range test.keys {
				_, ran := s.Keystroke(context.Background(), k)
				assert.Equal(test.expRan[i], ran)
			}

			assert.Equal(test.expPending, s.Keystrokes())
			assert.Equal(test.expNRows, sh.NRows())
			if test.expLastFail != "" {
				var fails []string
				for _, m := range s.Status().History() {
					if m.Priority == status.PriorityFail {
						fails = append(fails, m.Text())
					}
				}
				require.NotEmpty(t, fails)
				assert.Equal(test.expLastFail, fails[len(fails)-1])
			}
		})
	}
}

func TestSessionNewKeySequenceShouldClearLiveStatuses(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, model.DefaultOptions())
	s.Push(model.NewSheet("s1", "a"))

	s.Status().Warning("disk slow")
	assert.Len(s.Status().Live(), 1)

	s.Keystroke(context.Background(), "g")
	assert.Empty(s.Status().Live())

	// Keys of the same sequence don't clear.
	s.Status().Warning("disk slow")
	s.Keystroke(context.Background(), "f")
	assert.Len(s.Status().Live(), 2)
	assert.Len(s.Status().History(), 2)
}

func TestSessionUndo(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newSession(t, model.DefaultOptions())
	sh := model.NewSheet("s1", "a")
	s.Push(sh)

	_, err := s.Exec(context.Background(), "add-row")
	require.NoError(err)
	_, err = s.Exec(context.Background(), "add-row")
	require.NoError(err)
	assert.Equal(2, sh.NRows())
	assert.True(sh.Modified())

	assert.True(s.Undo(context.Background()))
	assert.True(s.Undo(context.Background()))
	assert.Equal(0, sh.NRows())
	assert.False(s.Undo(context.Background()))
}

func TestSessionReplay(t *testing.T) {
	tests := map[string]struct {
		steps    []string
		expNRows int
		expErr   bool
	}{
		"Replaying steps should run all of them": {
			steps:    []string{"add-row", "add-row", "add-row"},
			expNRows: 3,
		},

		"A failing step should stop the replay": {
			steps:    []string{"add-row", "fail", "add-row"},
			expNRows: 1,
			expErr:   true,
		},

		"An unknown command should stop the replay": {
			steps:    []string{"add-row", "nope"},
			expNRows: 1,
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			s := newSession(t, model.DefaultOptions())
			sh := model.NewSheet("s1", "a")
			s.Push(sh)

			steps := []session.Step{}
			for _, st := range test.steps {
				step, err := session.ParseStep(st)
				require.NoError(err)
				steps = append(steps, step)
			}

			err := s.Replay(context.Background(), steps)
			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(test.expNRows, sh.NRows())
		})
	}
}

func TestParseStep(t *testing.T) {
	tests := map[string]struct {
		step    string
		expStep session.Step
		expErr  bool
	}{
		"A step without args should parse": {
			step:    "fill-nulls",
			expStep: session.Step{Command: "fill-nulls", Args: []string{}},
		},

		"A step with args should parse": {
			step:    "  add-rows   3 ",
			expStep: session.Step{Command: "add-rows", Args: []string{"3"}},
		},

		"An empty step should fail": {
			step:   "   ",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := session.ParseStep(test.step)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expStep, got)
		})
	}
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "add-rows 3", session.Step{Command: "add-rows", Args: []string{"3"}}.String())
	assert.Equal(t, "fill-nulls", session.Step{Command: "fill-nulls"}.String())
}
