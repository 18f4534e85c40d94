package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/vgrid/internal/app/opensheet"
	"github.com/slok/vgrid/internal/app/sample"
	"github.com/slok/vgrid/internal/app/savesheet"
	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/undo"
)

// NewSheetName is the name of the sheets created empty.
const NewSheetName = "unnamed"

func sheetCommands(svcs *services) []command.Command {
	return []command.Command{
		{
			Name:     "rename-sheet",
			LongName: "rename sheet",
			Help:     "rename the sheet",
			Input:    "new sheet name",
			Body: func(_ context.Context, c *command.Context, args []string) error {
				name, err := textArg(c, args, "sheet name")
				if err != nil {
					return err
				}
				c.Sheet.SetName(name)
				return nil
			},
			Undo: func(c *command.Context) undo.Func {
				old := c.Sheet.Name()
				return func(context.Context) error {
					c.Sheet.SetName(old)
					return nil
				}
			},
		},
		{
			Name:     "random-rows",
			LongName: "random rows",
			Help:     "open a new sheet with N random rows of the sheet",
			Input:    "random rows",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				n, err := countArg(c, args, "rows")
				if err != nil {
					return err
				}

				sh, err := svcs.sample.Run(ctx, sample.Request{Task: c.Task, Sheet: c.Sheet, N: n})
				if err != nil {
					return err
				}
				c.Session.Push(sh)

				return nil
			},
		},
		{
			Name:     "save-sheet",
			LongName: "save sheet",
			Help:     "save the sheet on the sheet store, optionally with another name",
			Keys:     []string{"^S"},
			Async:    true,
			Input:    "save as",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				req := savesheet.Request{Task: c.Task, Sheets: []*model.Sheet{c.Sheet}}
				if len(args) > 0 {
					req.Name = args[0]
				}

				names, err := svcs.save.Run(ctx, req)
				if err != nil {
					return err
				}
				c.Status.Info("saved " + names[0])

				return nil
			},
		},
		{
			Name:     "save-all",
			LongName: "save all sheets",
			Help:     "save all the sheets on the sheet store",
			Keys:     []string{"g^S"},
			Scope:    command.ScopeGlobal,
			Async:    true,
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				sheets := c.Session.Sheets()
				if len(sheets) == 0 {
					return c.Status.Fail(c.Command.Name, "no sheets")
				}

				names, err := svcs.save.Run(ctx, savesheet.Request{Task: c.Task, Sheets: sheets})
				if err != nil {
					return err
				}
				c.Status.Info(fmt.Sprintf("saved %d sheets: %s", len(names), strings.Join(names, ", ")))

				return nil
			},
		},
		{
			Name:     "open-sheet",
			LongName: "open sheet",
			Help:     "open a stored sheet or a CSV file",
			Keys:     []string{"o"},
			Scope:    command.ScopeGlobal,
			Async:    true,
			Input:    "open",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				source, err := textArg(c, args, "sheet name or path")
				if err != nil {
					return err
				}

				p := c.Task.Progress(0, "opening")
				defer p.Done()

				sh, err := svcs.open.Run(ctx, opensheet.Request{Source: source})
				if err != nil {
					return err
				}
				if err := c.Task.Check(); err != nil {
					return err
				}
				c.Session.Push(sh)

				return nil
			},
		},
		{
			Name:     "add-sheet",
			LongName: "add sheet",
			Help:     "open a new empty sheet with N columns",
			Keys:     []string{"A"},
			Scope:    command.ScopeGlobal,
			Input:    "columns",
			Body: func(_ context.Context, c *command.Context, args []string) error {
				n := 1
				if len(args) > 0 && args[0] != "" {
					var err error
					if n, err = countArg(c, args, "columns"); err != nil {
						return err
					}
				}

				sh := model.NewSheet(NewSheetName, make([]string, n)...)
				sh.AppendRow()
				c.Session.Push(sh)

				return nil
			},
		},
		{
			Name:     "quit-sheet",
			LongName: "quit sheet",
			Help:     "cancel the sheet tasks and remove it from the sheet stack",
			Keys:     []string{"q"},
			Body: func(_ context.Context, c *command.Context, _ []string) error {
				c.Session.CancelSheet(c.Sheet.ID())
				c.Session.Quit(c.Sheet)
				return nil
			},
		},
		{
			Name:     "open-statuses",
			LongName: "open status history",
			Help:     "open the status history, most recent first",
			Keys:     []string{"^P"},
			Scope:    command.ScopeGlobal,
			Body: func(_ context.Context, c *command.Context, _ []string) error {
				c.Session.Push(c.Session.StatusHistorySheet())
				return nil
			},
		},
	}
}

func sessionCommands() []command.Command {
	return []command.Command{
		{
			Name:     "undo-last",
			LongName: "undo",
			Help:     "undo the last change",
			Keys:     []string{"U"},
			Scope:    command.ScopeGlobal,
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				c.Session.Undo(ctx)
				return nil
			},
		},
		{
			Name:     "cancel-sheet",
			LongName: "cancel sheet tasks",
			Help:     "cancel all the tasks running on the sheet",
			Keys:     []string{"^X"},
			Body: func(_ context.Context, c *command.Context, _ []string) error {
				n := c.Session.CancelSheet(c.Sheet.ID())
				c.Status.Info(fmt.Sprintf("cancelled %d tasks", n))
				return nil
			},
		},
		{
			Name:     "cancel-all",
			LongName: "cancel all tasks",
			Help:     "cancel every running task",
			Keys:     []string{"g^X"},
			Scope:    command.ScopeGlobal,
			Body: func(_ context.Context, c *command.Context, _ []string) error {
				n := c.Session.CancelAll()
				c.Status.Info(fmt.Sprintf("cancelled %d tasks", n))
				return nil
			},
		},
	}
}
