package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// Config is the configuration of a session.
type Config struct {
	// Registry has the commands the session can run.
	Registry *command.Registry
	Options  model.Options
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}

	if c.Options.StatusSeparator == "" {
		c.Options.StatusSeparator = model.DefaultOptions().StatusSeparator
	}
	if err := c.Options.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Session is one interactive or scripted run. It owns the sheet stack and the
// components that execute commands on them, from creation until Close.
type Session struct {
	id         string
	opts       model.Options
	registry   *command.Registry
	status     *status.Aggregator
	runner     *task.Runner
	ledger     *undo.Ledger
	dispatcher *command.Dispatcher
	logger     log.Logger

	mu         sync.Mutex
	sheets     []*model.Sheet
	keystrokes string
}

// New returns a new session.
func New(cfg Config) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	id := uuid.NewString()
	logger := cfg.Logger.WithValues(log.Kv{"svc": "session.Session", "session-id": id})

	for key, name := range cfg.Options.Bindings {
		if err := cfg.Registry.Bind(key, name); err != nil {
			return nil, fmt.Errorf("could not bind %q: %w", key, err)
		}
	}

	agg, err := status.NewAggregator(status.AggregatorConfig{
		Debug:  cfg.Options.Debug,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create status aggregator: %w", err)
	}

	runner, err := task.NewRunner(task.RunnerConfig{
		Logger:    logger,
		Reporter:  agg,
		Retention: cfg.Options.TaskRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task runner: %w", err)
	}

	ledger, err := undo.NewLedger(undo.LedgerConfig{
		Activity: runner,
		Reporter: agg,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create undo ledger: %w", err)
	}

	s := &Session{
		id:       id,
		opts:     cfg.Options,
		registry: cfg.Registry,
		status:   agg,
		runner:   runner,
		ledger:   ledger,
		logger:   logger,
	}

	s.dispatcher, err = command.NewDispatcher(command.DispatcherConfig{
		Registry: cfg.Registry,
		Spawner:  runner,
		Ledger:   ledger,
		Status:   agg,
		Session:  s,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create dispatcher: %w", err)
	}

	logger.Debugf("Session started")
	return s, nil
}

func (s *Session) ID() string                      { return s.id }
func (s *Session) Options() model.Options          { return s.opts }
func (s *Session) Registry() *command.Registry     { return s.registry }
func (s *Session) Status() *status.Aggregator      { return s.status }
func (s *Session) Runner() *task.Runner            { return s.runner }
func (s *Session) Ledger() *undo.Ledger            { return s.ledger }
func (s *Session) Dispatcher() *command.Dispatcher { return s.dispatcher }

// Push adds a sheet on top of the stack, making it the active one.
func (s *Session) Push(sh *model.Sheet) {
	if sh == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A sheet is only once on the stack, pushing it again brings it to the top.
	if i := slices.Index(s.sheets, sh); i >= 0 {
		s.sheets = slices.Delete(s.sheets, i, i+1)
	}
	s.sheets = append(s.sheets, sh)
}

// Quit removes a sheet from the stack.
func (s *Session) Quit(sh *model.Sheet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.sheets, sh)
	if i < 0 {
		return false
	}
	s.sheets = slices.Delete(s.sheets, i, i+1)
	return true
}

// Active returns the sheet on top of the stack, nil when there are none.
func (s *Session) Active() *model.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sheets) == 0 {
		return nil
	}
	return s.sheets[len(s.sheets)-1]
}

// Sheets returns the sheet stack, bottom first.
func (s *Session) Sheets() []*model.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sheets)
}

// SheetByName returns the topmost sheet with the name.
func (s *Session) SheetByName(name string) (*model.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sheets) - 1; i >= 0; i-- {
		if s.sheets[i].Name() == name {
			return s.sheets[i], true
		}
	}
	return nil, false
}

func (s *Session) sheetIndex(sh *model.Sheet) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Index(s.sheets, sh)
}

// Undo undoes the last mutation.
func (s *Session) Undo(ctx context.Context) bool { return s.ledger.Undo(ctx) }

// CancelSheet cancels the tasks running on a sheet.
func (s *Session) CancelSheet(sheetID string) int { return s.runner.CancelSheet(sheetID) }

// CancelAll cancels every running task.
func (s *Session) CancelAll() int { return s.runner.CancelAll() }

// Exec runs a command by name on the active sheet.
func (s *Session) Exec(ctx context.Context, name string, args ...string) (command.Outcome, error) {
	return s.dispatcher.Dispatch(ctx, s.Active(), name, args...)
}

// Run runs a resolved command on the active sheet.
func (s *Session) Run(ctx context.Context, cmd command.Command, args ...string) (command.Outcome, error) {
	return s.dispatcher.Run(ctx, s.Active(), cmd, args...)
}

// Wait blocks until no tasks are running.
func (s *Session) Wait(ctx context.Context) error {
	return s.runner.Wait(ctx)
}

// Close cancels all the running tasks and waits for them to finish.
func (s *Session) Close(ctx context.Context) error {
	if err := s.runner.Close(ctx); err != nil {
		return fmt.Errorf("could not close task runner: %w", err)
	}
	s.logger.Debugf("Session closed")
	return nil
}
