package builtin

import (
	"context"

	"github.com/slok/vgrid/internal/app/addcols"
	"github.com/slok/vgrid/internal/app/renamecols"
	"github.com/slok/vgrid/internal/app/savesheet"
	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/undo"
)

func columnCommands(svcs *services) []command.Command {
	addCols := func(ctx context.Context, c *command.Context, n int) error {
		crow, ccol := c.Sheet.Cursor()
		index := ccol + 1
		if c.Sheet.NColumns() == 0 {
			index = 0
		}

		res, err := svcs.addCols.Run(ctx, addcols.Request{Sheet: c.Sheet, Index: index, N: n})
		if err != nil {
			return err
		}
		c.AddUndo(res.Undo)
		c.Sheet.SetCursor(crow, index)

		return nil
	}

	// Names columns after the selected rows, or the cursor row without selection.
	renameCols := func(allCols, overwrite bool) command.Body {
		return func(ctx context.Context, c *command.Context, _ []string) error {
			rows := c.Sheet.SelectedRows()
			if len(rows) == 0 {
				r, ok := c.Sheet.CursorRow()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no rows")
				}
				rows = []*model.Row{r}
			}

			cols := c.Sheet.Columns()
			if !allCols {
				col, ok := c.Sheet.CursorColumn()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no columns")
				}
				cols = []model.Column{col}
			}

			res, err := svcs.renameCols.Run(ctx, renamecols.Request{Sheet: c.Sheet, Rows: rows, Columns: cols, Overwrite: overwrite})
			if err != nil {
				return err
			}
			c.AddUndo(res.Undo)

			return nil
		}
	}

	return []command.Command{
		{
			Name:     "addcol-new",
			LongName: "add column",
			Help:     "insert a blank column after the cursor column",
			Keys:     []string{"za"},
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				return addCols(ctx, c, 1)
			},
		},
		{
			Name:     "addcol-bulk",
			LongName: "add columns",
			Help:     "insert N blank columns after the cursor column",
			Keys:     []string{"gza"},
			Input:    "columns to add",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				n, err := countArg(c, args, "columns")
				if err != nil {
					return err
				}
				return addCols(ctx, c, n)
			},
		},
		{
			Name:     "rename-col",
			LongName: "rename column",
			Help:     "rename the cursor column",
			Keys:     []string{"^"},
			Input:    "new column name",
			Body: func(_ context.Context, c *command.Context, args []string) error {
				name, err := textArg(c, args, "column name")
				if err != nil {
					return err
				}
				col, ok := c.Sheet.CursorColumn()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no columns")
				}
				_, err = c.Sheet.RenameColumn(col.Key, name)
				return err
			},
			Undo: func(c *command.Context) undo.Func {
				col, ok := c.Sheet.CursorColumn()
				if !ok {
					return nil
				}
				return func(context.Context) error {
					_, err := c.Sheet.RenameColumn(col.Key, col.Name)
					return err
				}
			},
		},
		{
			Name:     "rename-col-selected",
			LongName: "rename column from rows",
			Help:     "rename the cursor column with its values on the selected rows",
			Keys:     []string{"z^"},
			Body:     renameCols(false, true),
		},
		{
			Name:     "rename-cols-row",
			LongName: "rename unnamed columns from rows",
			Help:     "name the unnamed columns with their values on the selected rows",
			Keys:     []string{"g^"},
			Body:     renameCols(true, false),
		},
		{
			Name:     "rename-cols-selected",
			LongName: "rename all columns from rows",
			Help:     "rename all the columns with their values on the selected rows",
			Keys:     []string{"gz^"},
			Body:     renameCols(true, true),
		},
		{
			Name:     "save-col",
			LongName: "save column",
			Help:     "save the cursor column as a new sheet on the sheet store",
			Keys:     []string{"z^S"},
			Async:    true,
			Input:    "save as",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				col, ok := c.Sheet.CursorColumn()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no columns")
				}

				view := model.NewSheetFromRows(c.Sheet.Name()+"_"+col.Name, []model.Column{col}, c.Sheet.Rows())
				req := savesheet.Request{Task: c.Task, Sheets: []*model.Sheet{view}}
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
	}
}
