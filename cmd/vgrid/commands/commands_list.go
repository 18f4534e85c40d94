package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vgrid/internal/printer"
	"github.com/slok/vgrid/internal/storage/memory"
)

type CommandsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewCommandsCommand returns the commands command.
func NewCommandsCommand(rootCmd *RootCommand, app *kingpin.Application) *CommandsCommand {
	c := &CommandsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("commands", "List the available commands and their key bindings.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c CommandsCommand) Name() string { return c.Cmd.FullCommand() }

func (c CommandsCommand) Run(ctx context.Context) error {
	// Listing doesn't touch stored sheets.
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	sess, err := c.rootCmd.newSession(ctx, repo)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	reg := sess.Registry()
	infos := []printer.CommandInfo{}
	for _, cmd := range reg.Commands() {
		infos = append(infos, printer.CommandInfo{
			Name:  cmd.Name,
			Keys:  reg.KeysOf(cmd.Name),
			Scope: cmd.Scope.String(),
			Async: cmd.Async,
			Help:  cmd.Help,
		})
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintCommands(infos); err != nil {
		return fmt.Errorf("could not print commands: %w", err)
	}

	return nil
}
