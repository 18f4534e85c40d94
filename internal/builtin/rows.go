package builtin

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/app/addrows"
	"github.com/slok/vgrid/internal/app/deleterows"
	"github.com/slok/vgrid/internal/app/fill"
	"github.com/slok/vgrid/internal/app/selectrows"
	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
)

func rowCommands(svcs *services) []command.Command {
	addRows := func(ctx context.Context, c *command.Context, n int) error {
		crow, ccol := c.Sheet.Cursor()
		index := crow + 1
		if c.Sheet.NRows() == 0 {
			index = 0
		}

		res, err := svcs.addRows.Run(ctx, addrows.Request{Task: c.Task, Sheet: c.Sheet, N: n, Index: index})
		if err != nil {
			return err
		}
		c.AddUndo(res.Undo)
		c.Sheet.SetCursor(index, ccol)

		return nil
	}

	deleteRows := func(ctx context.Context, c *command.Context, rows []*model.Row) (int, error) {
		res, err := svcs.deleteRows.Run(ctx, deleterows.Request{Task: c.Task, Sheet: c.Sheet, Rows: rows})
		if err != nil {
			return 0, err
		}
		c.AddUndo(res.Undo)
		return res.Deleted, nil
	}

	selectRows := func(ctx context.Context, c *command.Context, rows []*model.Row, unselect bool) (int, error) {
		res, err := svcs.selectRows.Run(ctx, selectrows.Request{Task: c.Task, Sheet: c.Sheet, Rows: rows, Unselect: unselect})
		if err != nil {
			return 0, err
		}
		c.AddUndo(res.Undo)
		return len(res.Changed), nil
	}

	cursorRowOp := func(unselect bool) command.Body {
		return func(ctx context.Context, c *command.Context, _ []string) error {
			r, ok := c.Sheet.CursorRow()
			if !ok {
				return c.Status.Fail(c.Command.Name, "no rows")
			}
			if _, err := selectRows(ctx, c, []*model.Row{r}, unselect); err != nil {
				return err
			}
			c.Sheet.MoveCursor(1, 0)
			return nil
		}
	}

	allRowsOp := func(unselect bool) command.Body {
		verb := "selected"
		if unselect {
			verb = "unselected"
		}
		return func(ctx context.Context, c *command.Context, _ []string) error {
			n, err := selectRows(ctx, c, c.Sheet.Rows(), unselect)
			if err != nil {
				return err
			}
			c.Status.Info(fmt.Sprintf("%s %d rows", verb, n))
			return nil
		}
	}

	return []command.Command{
		{
			Name:     "add-row",
			LongName: "add row",
			Help:     "insert a blank row after the cursor",
			Keys:     []string{"a"},
			Async:    true,
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				return addRows(ctx, c, 1)
			},
		},
		{
			Name:     "add-rows",
			LongName: "add rows",
			Help:     "insert N blank rows after the cursor",
			Keys:     []string{"ga"},
			Async:    true,
			Input:    "rows to add",
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				n, err := countArg(c, args, "rows")
				if err != nil {
					return err
				}
				return addRows(ctx, c, n)
			},
		},
		{
			Name:     "fill-nulls",
			LongName: "fill nulls",
			Help:     "fill the null cells of the column with the previous non null value",
			Keys:     []string{"f"},
			Async:    true,
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				col, ok := c.Sheet.CursorColumn()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no columns")
				}

				res, err := svcs.fill.Run(ctx, fill.Request{
					Task:      c.Task,
					Sheet:     c.Sheet,
					ColumnKey: col.Key,
					Rows:      c.Sheet.SelectedRows(),
				})
				if err != nil {
					return err
				}
				c.AddUndo(res.Undo)
				c.Status.Info(fmt.Sprintf("filled %d values", res.Filled))

				return nil
			},
		},
		{
			Name:     "delete-row",
			LongName: "delete row",
			Help:     "delete the cursor row",
			Keys:     []string{"d"},
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				r, ok := c.Sheet.CursorRow()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no rows")
				}
				_, err := deleteRows(ctx, c, []*model.Row{r})
				return err
			},
		},
		{
			Name:     "delete-selected",
			LongName: "delete selected",
			Help:     "delete the selected rows",
			Keys:     []string{"gd"},
			Async:    true,
			Body: func(ctx context.Context, c *command.Context, _ []string) error {
				rows := c.Sheet.SelectedRows()
				if len(rows) == 0 {
					return c.Status.Fail(c.Command.Name, "no rows selected")
				}

				n, err := deleteRows(ctx, c, rows)
				if err != nil {
					return err
				}
				c.Status.Info(fmt.Sprintf("deleted %d %s", n, c.Sheet.RowType()))

				return nil
			},
		},
		{Name: "select-row", LongName: "select row", Help: "select the cursor row", Keys: []string{"s"}, Body: cursorRowOp(false)},
		{Name: "unselect-row", LongName: "unselect row", Help: "unselect the cursor row", Keys: []string{"u"}, Body: cursorRowOp(true)},
		{
			Name:     "toggle-row",
			LongName: "toggle row",
			Help:     "toggle the selection of the cursor row",
			Keys:     []string{"t"},
			Body: func(ctx context.Context, c *command.Context, args []string) error {
				r, ok := c.Sheet.CursorRow()
				if !ok {
					return c.Status.Fail(c.Command.Name, "no rows")
				}
				return cursorRowOp(c.Sheet.IsSelected(r))(ctx, c, args)
			},
		},
		{Name: "select-all", LongName: "select all", Help: "select all the rows", Keys: []string{"gs"}, Async: true, Body: allRowsOp(false)},
		{Name: "unselect-all", LongName: "unselect all", Help: "unselect all the rows", Keys: []string{"gu"}, Async: true, Body: allRowsOp(true)},
	}
}
