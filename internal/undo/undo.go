package undo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
)

// Func reverses a mutation. It references the target state, it doesn't own it.
type Func func(ctx context.Context) error

// Entry is a reversible operation.
type Entry struct {
	// Name is the long name of the command that pushed the entry.
	Name string
	// SheetID is the sheet the entry restores, empty for global entries.
	SheetID   string
	Undo      Func
	CreatedAt time.Time
}

// ActivityChecker knows if a sheet is being mutated by a running task.
type ActivityChecker interface {
	ActiveForSheet(sheetID string) bool
}

// Reporter is where the undo results are reported.
type Reporter interface {
	Info(parts ...any) bool
	Warning(parts ...any) bool
	Error(parts ...any) error
}

type noActivity struct{}

func (noActivity) ActiveForSheet(string) bool { return false }

// LedgerConfig is the configuration for the undo ledger.
type LedgerConfig struct {
	Activity ActivityChecker
	Reporter Reporter
	Logger   log.Logger
}

func (c *LedgerConfig) defaults() error {
	if c.Reporter == nil {
		return fmt.Errorf("reporter is required")
	}

	if c.Activity == nil {
		c.Activity = noActivity{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "undo.Ledger"})

	return nil
}

// Ledger is the stack of undoable operations of a session.
type Ledger struct {
	activity ActivityChecker
	reporter Reporter
	logger   log.Logger

	mu      sync.Mutex
	entries []Entry
}

// NewLedger returns a new undo ledger.
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Ledger{
		activity: cfg.Activity,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
	}, nil
}

// Push adds an entry on top of the stack.
func (l *Ledger) Push(e Entry) error {
	if e.Undo == nil {
		return fmt.Errorf("undo func is required: %w", model.ErrNotValid)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	l.logger.Debugf("Undo entry pushed for %q", e.Name)
	return nil
}

// Undo pops the most recent entry and runs it. It returns false when nothing was undone.
//
// Entries whose sheet is being mutated by a running task are not run and stay
// on the stack so they can be undone once the task finishes.
func (l *Ledger) Undo(ctx context.Context) bool {
	e, err := l.pop()
	if err != nil {
		l.reporter.Warning(err.Error())
		return false
	}

	if err := e.Undo(ctx); err != nil {
		l.logger.Errorf("Could not undo %q: %s", e.Name, err)
		_ = l.reporter.Error("could not undo "+e.Name, err.Error())
		return false
	}

	l.reporter.Info("undid " + e.Name)
	return true
}

func (l *Ledger) pop() (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	if n == 0 {
		return Entry{}, fmt.Errorf("nothing to undo")
	}

	e := l.entries[n-1]
	if e.SheetID != "" && l.activity.ActiveForSheet(e.SheetID) {
		return Entry{}, fmt.Errorf("can't undo %s while a task is running on its sheet", e.Name)
	}
	l.entries = l.entries[:n-1]

	return e, nil
}

// Peek returns the entry Undo would run.
func (l *Ledger) Peek() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops all the entries.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
