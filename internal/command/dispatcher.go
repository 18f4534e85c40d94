package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// Spawner runs work in the background.
type Spawner interface {
	Spawn(ctx context.Context, spec task.Spec) (*task.Task, error)
}

// UndoPusher records undo entries.
type UndoPusher interface {
	Push(e undo.Entry) error
}

// DispatcherConfig is the configuration for the command dispatcher.
type DispatcherConfig struct {
	Registry *Registry
	Spawner  Spawner
	Ledger   UndoPusher
	Status   *status.Aggregator
	Session  Session
	Logger   log.Logger
}

func (c *DispatcherConfig) defaults() error {
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Spawner == nil {
		return fmt.Errorf("spawner is required")
	}
	if c.Ledger == nil {
		return fmt.Errorf("ledger is required")
	}
	if c.Status == nil {
		return fmt.Errorf("status aggregator is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "command.Dispatcher"})

	return nil
}

// Outcome is the result of a dispatch.
type Outcome struct {
	Command Command
	// Async is true when the command was handed to a background task.
	Async bool
	// Task is the background task, only set on async commands.
	Task *task.Task
	// Err is the error of a sync command, it has already been reported.
	Err error
}

// Dispatcher resolves commands and executes them inline or in the background.
type Dispatcher struct {
	registry *Registry
	spawner  Spawner
	ledger   UndoPusher
	status   *status.Aggregator
	session  Session
	logger   log.Logger
}

// NewDispatcher returns a new command dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Dispatcher{
		registry: cfg.Registry,
		spawner:  cfg.Spawner,
		ledger:   cfg.Ledger,
		status:   cfg.Status,
		session:  cfg.Session,
		logger:   cfg.Logger,
	}, nil
}

// Registry returns the registry the dispatcher resolves commands from.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch resolves a command by name and executes it. The returned error is
// only set when the command could not be started, and it has been reported.
func (d *Dispatcher) Dispatch(ctx context.Context, sheet *model.Sheet, name string, args ...string) (Outcome, error) {
	cmd, ok := d.registry.Get(name)
	if !ok {
		parts := []any{fmt.Sprintf("no command %q", name)}
		if s := d.registry.Suggest(name); s != "" {
			parts = append(parts, fmt.Sprintf("did you mean %q?", s))
		}
		_ = d.status.Fail(parts...)
		return Outcome{}, fmt.Errorf("command %q: %w", name, model.ErrNotFound)
	}

	return d.Run(ctx, sheet, cmd, args...)
}

// DispatchKey resolves a command by its keystroke and executes it.
func (d *Dispatcher) DispatchKey(ctx context.Context, sheet *model.Sheet, key string, args ...string) (Outcome, error) {
	cmd, ok := d.registry.ByKey(key)
	if !ok {
		_ = d.status.Fail(fmt.Sprintf("no command for %q", key))
		return Outcome{}, fmt.Errorf("key %q: %w", key, model.ErrNotFound)
	}

	return d.Run(ctx, sheet, cmd, args...)
}

// Run executes a resolved command.
func (d *Dispatcher) Run(ctx context.Context, sheet *model.Sheet, cmd Command, args ...string) (Outcome, error) {
	if cmd.Scope == ScopeSheet && sheet == nil {
		_ = d.status.Fail(cmd.Name, "no sheet")
		return Outcome{Command: cmd}, fmt.Errorf("command %q needs a sheet: %w", cmd.Name, model.ErrNotValid)
	}

	sheetID := ""
	if sheet != nil {
		sheet.SetLongName(cmd.LongName)
		if cmd.Scope == ScopeSheet {
			sheetID = sheet.ID()
		}
	}

	logger := d.logger.WithValues(log.Kv{"cmd": cmd.Name, "sheet-id": sheetID})
	c := &Context{
		Sheet:   sheet,
		Status:  d.status,
		Session: d.session,
		Logger:  logger,
		Command: cmd,
	}

	// Pre-state is captured before the command is scheduled.
	var gen undo.Func
	if cmd.Undo != nil {
		gen = cmd.Undo(c)
	}

	spec := task.Spec{
		Label:   cmd.LongName,
		SheetID: sheetID,
		Timeout: cmd.Timeout,
		Work: func(ctx context.Context, t *task.Task) error {
			c.Task = t
			if err := cmd.Body(ctx, c, args); err != nil {
				return err
			}
			d.record(c, sheetID, gen)
			return nil
		},
	}

	if cmd.Async {
		t, err := d.spawner.Spawn(ctx, spec)
		if err != nil {
			_ = d.status.Error(cmd.LongName, err.Error())
			return Outcome{Command: cmd}, fmt.Errorf("could not spawn %q: %w", cmd.Name, err)
		}
		logger.Debugf("Command dispatched as task %s", t.ID())
		return Outcome{Command: cmd, Async: true, Task: t}, nil
	}

	t, finish := task.NewStandalone(ctx, spec)
	err := d.runSafe(t, spec.Work, logger)
	finish(err)
	if err != nil {
		d.report(cmd, err, logger)
	}

	return Outcome{Command: cmd, Err: err}, nil
}

func (d *Dispatcher) runSafe(t *task.Task, work task.Work, logger log.Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("Command panicked: %v\n%s", rec, debug.Stack())
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return work(t.Context(), t)
}

// record pushes the undo entry of a successful execution.
func (d *Dispatcher) record(c *Context, sheetID string, gen undo.Func) {
	f := c.undoFunc(gen)
	if f == nil {
		return
	}

	err := d.ledger.Push(undo.Entry{
		Name:      c.Command.LongName,
		SheetID:   sheetID,
		Undo:      f,
		CreatedAt: time.Now(),
	})
	if err != nil {
		c.Logger.Errorf("Could not push undo entry: %s", err)
		return
	}

	if c.Sheet != nil {
		c.Sheet.SetModified(true)
	}
}

// report reports the errors of inline commands, background ones are reported by the runner.
func (d *Dispatcher) report(cmd Command, err error, logger log.Logger) {
	var aerr *status.AbortError
	switch {
	case errors.As(err, &aerr):
		logger.Debugf("Command aborted: %s", err)
	case errors.Is(err, model.ErrCancelled):
		d.status.Warning(cmd.LongName, "cancelled")
	default:
		logger.Errorf("Command failed: %s", err)
		d.status.Report(status.PriorityError, cmd.LongName, err.Error())
	}
}
