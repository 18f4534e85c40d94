package builtin

import (
	"context"

	"github.com/slok/vgrid/internal/command"
)

func move(drow, dcol int) command.Body {
	return func(_ context.Context, c *command.Context, _ []string) error {
		c.Sheet.MoveCursor(drow, dcol)
		return nil
	}
}

func cursorCommands() []command.Command {
	return []command.Command{
		{Name: "go-down", LongName: "go down", Help: "move the cursor one row down", Keys: []string{"j", "down"}, Body: move(1, 0)},
		{Name: "go-up", LongName: "go up", Help: "move the cursor one row up", Keys: []string{"k", "up"}, Body: move(-1, 0)},
		{Name: "go-left", LongName: "go left", Help: "move the cursor one column left", Keys: []string{"h", "left"}, Body: move(0, -1)},
		{Name: "go-right", LongName: "go right", Help: "move the cursor one column right", Keys: []string{"l", "right"}, Body: move(0, 1)},
	}
}
