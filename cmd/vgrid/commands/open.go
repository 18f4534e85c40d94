package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slok/vgrid/internal/printer"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/tui"
)

type OpenCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	sources []string
}

// NewOpenCommand returns the open command.
func NewOpenCommand(rootCmd *RootCommand, app *kingpin.Application) *OpenCommand {
	c := &OpenCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("open", "Open sheets on the interactive screen.").Default()
	c.Cmd.Arg("sources", "CSV files or stored sheet names, an empty sheet is opened without them.").StringsVar(&c.sources)

	return c
}

func (c OpenCommand) Name() string { return c.Cmd.FullCommand() }

func (c OpenCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	sess, err := c.rootCmd.newSession(ctx, repo)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			logger.Errorf("Could not close session: %s", err)
		}
	}()

	// Sources load in the background while the screen is already up.
	for _, src := range c.sources {
		if _, err := sess.Exec(ctx, "open-sheet", src); err != nil {
			return fmt.Errorf("could not open %q: %w", src, err)
		}
	}
	if len(c.sources) == 0 {
		if _, err := sess.Exec(ctx, "add-sheet"); err != nil {
			return fmt.Errorf("could not create sheet: %w", err)
		}
	}

	err = tui.Run(ctx, tui.Config{Session: sess, Logger: logger},
		tea.WithInput(c.rootCmd.Stdin),
		tea.WithOutput(c.rootCmd.Stdout),
	)
	if err != nil {
		return err
	}

	// Leave the failures that closed the screen visible.
	failures := []status.Message{}
	for _, m := range sess.Status().Live() {
		if m.Priority.Interrupts() {
			failures = append(failures, m)
		}
	}
	if len(failures) > 0 {
		_ = printer.NewTablePrinter(c.rootCmd.Stderr).PrintStatuses(failures, sess.Options().Debug)
	}

	return nil
}
