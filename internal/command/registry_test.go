package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
)

func nopBody(context.Context, *command.Context, []string) error { return nil }

func TestRegistryRegister(t *testing.T) {
	tests := map[string]struct {
		cmds   []command.Command
		expErr error
	}{
		"Valid commands should be registered.": {
			cmds: []command.Command{
				{Name: "go-down", Keys: []string{"j"}, Body: nopBody},
				{Name: "go-up", Keys: []string{"k"}, Body: nopBody},
			},
		},

		"A command without name should fail.": {
			cmds:   []command.Command{{Body: nopBody}},
			expErr: model.ErrNotValid,
		},

		"A command without body should fail.": {
			cmds:   []command.Command{{Name: "x"}},
			expErr: model.ErrNotValid,
		},

		"Duplicated names should fail.": {
			cmds: []command.Command{
				{Name: "x", Body: nopBody},
				{Name: "x", Body: nopBody},
			},
			expErr: model.ErrAlreadyExists,
		},

		"Duplicated keys should fail.": {
			cmds: []command.Command{
				{Name: "x", Keys: []string{"a"}, Body: nopBody},
				{Name: "y", Keys: []string{"a"}, Body: nopBody},
			},
			expErr: model.ErrAlreadyExists,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := command.NewRegistry().Register(test.cmds...)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistryRegisterFailedBatchShouldRegisterNothing(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg := command.NewRegistry()
	require.NoError(reg.Register(command.Command{Name: "go-down", Keys: []string{"j"}, Body: nopBody}))

	err := reg.Register(
		command.Command{Name: "go-up", Keys: []string{"k"}, Body: nopBody},
		command.Command{Name: "go-left", Keys: []string{"h"}, Body: nopBody},
		command.Command{Name: "go-right", Keys: []string{"j"}, Body: nopBody},
	)
	assert.ErrorIs(err, model.ErrAlreadyExists)

	_, ok := reg.Get("go-up")
	assert.False(ok)
	_, ok = reg.ByKey("h")
	assert.False(ok)
	assert.Len(reg.Commands(), 1)

	// The same batch without the conflict registers fine afterwards.
	require.NoError(reg.Register(
		command.Command{Name: "go-up", Keys: []string{"k"}, Body: nopBody},
		command.Command{Name: "go-left", Keys: []string{"h"}, Body: nopBody},
	))
	assert.Len(reg.Commands(), 3)
}

func TestRegistryLookups(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg := command.NewRegistry()
	require.NoError(reg.Register(
		command.Command{Name: "fill-nulls", Keys: []string{"f"}, Body: nopBody},
		command.Command{Name: "select-all", LongName: "select all rows", Keys: []string{"gs"}, Body: nopBody},
		command.Command{Name: "add-row", Keys: []string{"a"}, Body: nopBody},
	))

	c, ok := reg.Get("select-all")
	require.True(ok)
	assert.Equal("select all rows", c.LongName)

	c, ok = reg.Get("add-row")
	require.True(ok)
	assert.Equal("add-row", c.LongName)

	c, ok = reg.ByKey("gs")
	require.True(ok)
	assert.Equal("select-all", c.Name)

	_, ok = reg.ByKey("g")
	assert.False(ok)
	assert.True(reg.IsPrefix("g"))
	assert.False(reg.IsPrefix("gs"))
	assert.False(reg.IsPrefix("z"))

	names := []string{}
	for _, c := range reg.Commands() {
		names = append(names, c.Name)
	}
	assert.Equal([]string{"add-row", "fill-nulls", "select-all"}, names)

	require.NoError(reg.Bind("F", "fill-nulls"))
	assert.ErrorIs(reg.Bind("x", "missing"), model.ErrNotFound)
	assert.Equal([]string{"F", "f"}, reg.KeysOf("fill-nulls"))
	assert.Equal("fill-nulls", reg.Bindings()["F"])
}

func TestRegistrySuggest(t *testing.T) {
	reg := command.NewRegistry()
	require.NoError(t, reg.Register(
		command.Command{Name: "fill-nulls", Body: nopBody},
		command.Command{Name: "add-row", Body: nopBody},
		command.Command{Name: "add-rows", Body: nopBody},
	))

	tests := map[string]struct {
		name string
		exp  string
	}{
		"A typo should be suggested.":           {name: "fil-nulls", exp: "fill-nulls"},
		"The closest name should win.":          {name: "add-rowz", exp: "add-row"},
		"Something unrelated should not match.": {name: "quit", exp: ""},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, reg.Suggest(test.name))
		})
	}
}
