package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vgrid/internal/app/listsheets"
)

type SheetListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	prefix string
	format string
}

// NewSheetListCommand returns the sheet list command.
func NewSheetListCommand(rootCmd *RootCommand, sheetCmd *kingpin.CmdClause) *SheetListCommand {
	c := &SheetListCommand{rootCmd: rootCmd}

	c.Cmd = sheetCmd.Command("list", "List the stored sheets.").Alias("ls")
	c.Cmd.Flag("prefix", "Only list sheets whose name starts with the prefix.").StringVar(&c.prefix)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c SheetListCommand) Name() string { return c.Cmd.FullCommand() }

func (c SheetListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := listsheets.NewService(listsheets.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	sheets, err := svc.Run(ctx, listsheets.Request{NamePrefix: c.prefix})
	if err != nil {
		return fmt.Errorf("could not list sheets: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintSheetList(sheets); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
