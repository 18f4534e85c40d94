package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/vgrid/internal/printer"
	"github.com/slok/vgrid/internal/session"
)

const progressInterval = 100 * time.Millisecond

type ExecCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	sources  []string
	steps    []string
	script   string
	format   string
	statuses bool
	tasks    bool
}

// NewExecCommand returns the exec command.
func NewExecCommand(rootCmd *RootCommand, app *kingpin.Application) *ExecCommand {
	c := &ExecCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("exec", "Run commands on sheets without the interactive screen and print the result.")
	c.Cmd.Arg("sources", "CSV files or stored sheet names to open before running the steps.").StringsVar(&c.sources)
	c.Cmd.Flag("step", "Command to run, with its arguments (e.g: 'add-rows 10'). Can be repeated.").Short('s').StringsVar(&c.steps)
	c.Cmd.Flag("script", "File with one step per line, lines starting with # are ignored.").StringVar(&c.script)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)
	c.Cmd.Flag("statuses", "Print the status history after the sheet.").BoolVar(&c.statuses)
	c.Cmd.Flag("tasks", "Print the finished tasks after the sheet.").BoolVar(&c.tasks)

	return c
}

func (c ExecCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExecCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	steps, err := c.loadSteps()
	if err != nil {
		return err
	}

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

	bar := printer.NewProgressBar(c.rootCmd.Stderr)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		t := time.NewTicker(progressInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				bar.Update(sess.Progress(sess.Active()))
			}
		}
	})

	replayErr := sess.Replay(ctx, steps)
	if replayErr == nil {
		replayErr = sess.Wait(ctx)
	}
	close(stop)
	wg.Wait()
	bar.Finish()

	debug := sess.Options().Debug
	if replayErr != nil {
		_ = printer.NewTablePrinter(c.rootCmd.Stderr).PrintStatuses(sess.Status().History(), debug)
		return fmt.Errorf("could not run steps: %w", replayErr)
	}

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if sh := sess.Active(); sh != nil {
		if err := p.PrintSheet(sh.Data()); err != nil {
			return fmt.Errorf("could not print sheet: %w", err)
		}
	}

	if c.statuses {
		if err := p.PrintStatuses(sess.Status().History(), debug); err != nil {
			return fmt.Errorf("could not print statuses: %w", err)
		}
	}

	if c.tasks {
		if err := p.PrintTasks(sess.Runner().Finished()); err != nil {
			return fmt.Errorf("could not print tasks: %w", err)
		}
	}

	return nil
}

// loadSteps returns the steps to run: opening the sources, the script ones and the flag ones.
func (c ExecCommand) loadSteps() ([]session.Step, error) {
	steps := []session.Step{}
	for _, src := range c.sources {
		steps = append(steps, session.Step{Command: "open-sheet", Args: []string{src}})
	}

	if c.script != "" {
		f, err := os.Open(c.script)
		if err != nil {
			return nil, fmt.Errorf("could not open script: %w", err)
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			s, err := session.ParseStep(line)
			if err != nil {
				return nil, fmt.Errorf("invalid script step %q: %w", line, err)
			}
			steps = append(steps, s)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("could not read script: %w", err)
		}
	}

	for _, raw := range c.steps {
		s, err := session.ParseStep(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: %w", raw, err)
		}
		steps = append(steps, s)
	}

	return steps, nil
}
