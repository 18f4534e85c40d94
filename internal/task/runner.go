package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
)

// Reporter receives the statuses of the finished tasks.
type Reporter interface {
	Report(p status.Priority, parts ...any) bool
}

type noopReporter struct{}

func (noopReporter) Report(status.Priority, ...any) bool { return false }

// Listener is called synchronously when a task reaches its terminal state.
type Listener func(Snapshot)

// RunnerConfig is the configuration for the task runner.
type RunnerConfig struct {
	Logger log.Logger
	// Reporter is where task failures are reported.
	Reporter Reporter
	// Retention is how long finished tasks are kept on Finished.
	Retention time.Duration
	Now       func() time.Time
}

func (c *RunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Runner"})

	if c.Reporter == nil {
		c.Reporter = noopReporter{}
	}

	if c.Retention < 0 {
		return fmt.Errorf("retention can't be negative")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return nil
}

// Runner spawns units of work and tracks them while they run. It doesn't
// serialize tasks, any number can run at the same time, on the same sheet too.
type Runner struct {
	logger    log.Logger
	reporter  Reporter
	retention time.Duration
	now       func() time.Time

	mu        sync.Mutex
	active    map[string]*Task
	order     []string
	finished  []Snapshot
	listeners []Listener
	closed    bool
	wg        sync.WaitGroup
}

// NewRunner returns a new task runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		logger:    cfg.Logger,
		reporter:  cfg.Reporter,
		retention: cfg.Retention,
		now:       cfg.Now,
		active:    map[string]*Task{},
	}, nil
}

// Subscribe registers a listener for task terminal transitions.
func (r *Runner) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Spawn starts the work in a new goroutine and returns its task handle.
func (r *Runner) Spawn(ctx context.Context, spec Spec) (*Task, error) {
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("runner is closed: %w", model.ErrNotValid)
	}
	// Tasks outlive the request that spawned them, they stop on Cancel or Close.
	t := newTask(context.WithoutCancel(ctx), ulid.Make().String(), spec, r.now())
	r.active[t.id] = t
	r.order = append(r.order, t.id)
	r.wg.Add(1)
	r.mu.Unlock()

	logger := r.logger.WithValues(log.Kv{"task-id": t.id, "task": t.label})
	logger.Debugf("Task spawned")

	go func() {
		defer r.wg.Done()

		t.setRunning()
		err := r.safeRun(t, spec.Work)
		r.complete(t, err, logger)
	}()

	return t, nil
}

func (r *Runner) safeRun(t *Task, work Work) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithValues(log.Kv{"task-id": t.id}).Errorf("Task panicked: %v\n%s", rec, debug.Stack())
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return work(t.ctx, t)
}

func (r *Runner) complete(t *Task, err error, logger log.Logger) {
	r.mu.Lock()
	if !t.finish(statusFor(t, err), err, r.now()) {
		r.mu.Unlock()
		return
	}
	snap := t.Snapshot()
	if r.retention > 0 {
		r.finished = append(r.finished, snap)
	}
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.report(snap, logger)
	for _, l := range listeners {
		l(snap)
	}

	// Waiters only return after the outcome has been reported.
	r.mu.Lock()
	delete(r.active, t.id)
	if i := slices.Index(r.order, t.id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.mu.Unlock()
	close(t.done)
}

func (r *Runner) report(s Snapshot, logger log.Logger) {
	switch s.Status {
	case StatusDone:
		logger.Debugf("Task done")
	case StatusCancelled:
		logger.Infof("Task cancelled")
		r.reporter.Report(status.PriorityWarning, s.Label, "cancelled")
	case StatusFailed:
		logger.Warningf("Task failed: %s", s.Err)
		var aerr *status.AbortError
		if errors.As(s.Err, &aerr) {
			// Already on the status history when it was raised.
			return
		}
		r.reporter.Report(status.PriorityError, s.Label, s.Err.Error())
	}
}

// Get returns an active task.
func (r *Runner) Get(id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.active[id]
	if !ok || t.terminal() {
		return nil, fmt.Errorf("task %q: %w", id, model.ErrNotFound)
	}
	return t, nil
}

// Cancel asks an active task to stop.
func (r *Runner) Cancel(id string) error {
	t, err := r.Get(id)
	if err != nil {
		return err
	}
	t.Cancel()
	return nil
}

// CancelSheet cancels every active task of the sheet and returns how many were asked to stop.
func (r *Runner) CancelSheet(sheetID string) int {
	return r.cancelWhere(func(t *Task) bool { return t.sheetID == sheetID })
}

// CancelAll cancels every active task and returns how many were asked to stop.
func (r *Runner) CancelAll() int {
	return r.cancelWhere(func(*Task) bool { return true })
}

func (r *Runner) cancelWhere(match func(*Task) bool) int {
	n := 0
	for _, t := range r.activeTasks() {
		if match(t) && !t.Cancelled() {
			t.Cancel()
			n++
		}
	}
	return n
}

// activeTasks returns the tasks that have not finished their work.
func (r *Runner) activeTasks() []*Task {
	ts := r.pendingTasks()
	return slices.DeleteFunc(ts, (*Task).terminal)
}

// pendingTasks returns the tracked tasks, including the finished ones that are
// still publishing their outcome.
func (r *Runner) pendingTasks() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := make([]*Task, 0, len(r.order))
	for _, id := range r.order {
		ts = append(ts, r.active[id])
	}
	return ts
}

// ListActive returns the tasks running or pending, in spawn order.
func (r *Runner) ListActive() []Snapshot {
	ts := r.activeTasks()
	snaps := make([]Snapshot, 0, len(ts))
	for _, t := range ts {
		snaps = append(snaps, t.Snapshot())
	}
	return snaps
}

// ActiveForSheet returns true when a task on the sheet is still running.
func (r *Runner) ActiveForSheet(sheetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.active {
		if t.sheetID == sheetID && !t.terminal() {
			return true
		}
	}
	return false
}

// Summary is the aggregated view of the active tasks.
type Summary struct {
	Count   int
	Gerunds []string
}

// Summary returns the number of active tasks and what they are doing. When
// sheetID is not empty only the tasks of that sheet are summarized.
func (r *Runner) Summary(sheetID string) Summary {
	var s Summary
	for _, t := range r.activeTasks() {
		if sheetID != "" && t.sheetID != sheetID {
			continue
		}
		s.Count++
		if g := t.Snapshot().Gerund; g != "" && !slices.Contains(s.Gerunds, g) {
			s.Gerunds = append(s.Gerunds, g)
		}
	}
	return s
}

// Finished returns the tasks that finished inside the retention window, most recent first.
func (r *Runner) Finished() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit := r.now().Add(-r.retention)
	kept := r.finished[:0]
	for _, s := range r.finished {
		if s.FinishedAt.After(limit) {
			kept = append(kept, s)
		}
	}
	r.finished = kept

	out := slices.Clone(kept)
	slices.Reverse(out)
	return out
}

// Wait blocks until there are no active tasks and all the finished ones have
// reported their outcome.
func (r *Runner) Wait(ctx context.Context) error {
	for {
		ts := r.pendingTasks()
		if len(ts) == 0 {
			return nil
		}
		for _, t := range ts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.Done():
			}
		}
	}
}

// Close stops accepting tasks, cancels the active ones and waits for them.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	if n := r.CancelAll(); n > 0 {
		r.logger.Infof("Cancelled %d active tasks", n)
	}

	if err := r.Wait(ctx); err != nil {
		return fmt.Errorf("could not wait for tasks: %w", err)
	}

	// Goroutines may still be notifying listeners.
	r.wg.Wait()
	return nil
}
