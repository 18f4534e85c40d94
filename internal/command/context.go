package command

import (
	"context"
	"sync"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// Session is what commands can do with the session they run on.
type Session interface {
	// Push adds a sheet on top of the sheet stack.
	Push(s *model.Sheet)
	// Quit removes a sheet from the sheet stack.
	Quit(s *model.Sheet) bool
	// Sheets returns the sheet stack, bottom first.
	Sheets() []*model.Sheet
	SheetByName(name string) (*model.Sheet, bool)
	Undo(ctx context.Context) bool
	CancelSheet(sheetID string) int
	CancelAll() int
	// StatusHistorySheet returns the status history as a sheet.
	StatusHistorySheet() *model.Sheet
}

// Context is what a command body receives on every execution.
type Context struct {
	// Sheet is the sheet the command runs on, nil for global commands without one.
	Sheet *model.Sheet
	// Task is the task running the command, it's never nil.
	Task    *task.Task
	Status  *status.Aggregator
	Session Session
	Logger  log.Logger
	Command Command

	mu    sync.Mutex
	undos []undo.Func
}

// AddUndo stages a reversal for the current execution. Staged undos are only
// recorded if the command finishes successfully.
func (c *Context) AddUndo(f undo.Func) {
	if f == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.undos = append(c.undos, f)
}

// undoFunc combines the generated undo with the staged ones, reversing the most recent first.
func (c *Context) undoFunc(gen undo.Func) undo.Func {
	c.mu.Lock()
	fs := make([]undo.Func, 0, len(c.undos)+1)
	if gen != nil {
		fs = append(fs, gen)
	}
	fs = append(fs, c.undos...)
	c.mu.Unlock()

	if len(fs) == 0 {
		return nil
	}

	return func(ctx context.Context) error {
		for i := len(fs) - 1; i >= 0; i-- {
			if err := fs[i](ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
