package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vgrid/internal/app/removesheet"
	"github.com/slok/vgrid/internal/printer"
)

type SheetRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	names []string
}

// NewSheetRmCommand returns the sheet rm command.
func NewSheetRmCommand(rootCmd *RootCommand, sheetCmd *kingpin.CmdClause) *SheetRmCommand {
	c := &SheetRmCommand{rootCmd: rootCmd}

	c.Cmd = sheetCmd.Command("rm", "Remove stored sheets.")
	c.Cmd.Arg("names", "Sheet names.").Required().StringsVar(&c.names)

	return c
}

func (c SheetRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c SheetRmCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := removesheet.NewService(removesheet.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	for _, name := range c.names {
		sheet, err := svc.Run(ctx, removesheet.Request{Name: name})
		if err != nil {
			return fmt.Errorf("could not remove sheet %q: %w", name, err)
		}

		msg := fmt.Sprintf("Removed sheet: %s (%d rows)", sheet.Name, sheet.NRows)
		if err := p.PrintMessage(msg); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
	}

	return nil
}
