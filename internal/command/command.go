package command

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/undo"
)

// Scope is where a command applies.
type Scope int

const (
	// ScopeSheet commands need a sheet to run on.
	ScopeSheet Scope = iota
	// ScopeGlobal commands apply to the whole session.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "sheet"
}

// Body is the executable part of a command.
type Body func(ctx context.Context, c *Context, args []string) error

// UndoGen captures the state a command is about to mutate and returns the func
// that restores it. It runs before the body.
type UndoGen func(c *Context) undo.Func

// Command is a registered unit of user invokable behavior.
type Command struct {
	Name     string
	LongName string
	// Help is a one line description.
	Help  string
	Keys  []string
	Scope Scope
	// Async commands run as background tasks.
	Async bool
	Body  Body
	Undo  UndoGen
	// Timeout is optional.
	Timeout time.Duration
	// Input is the prompt for the command argument, empty when it takes none.
	Input string
}

func (c *Command) defaults() error {
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}
	if c.Body == nil {
		return fmt.Errorf("command %q body is required: %w", c.Name, model.ErrNotValid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("command %q timeout can't be negative: %w", c.Name, model.ErrNotValid)
	}
	if c.LongName == "" {
		c.LongName = c.Name
	}
	return nil
}
