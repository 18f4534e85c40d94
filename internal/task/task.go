package task

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/progress"
)

// Status represents the state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal returns true when the status is final.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusFailed
}

// Work is the unit of work a task executes.
type Work func(ctx context.Context, t *Task) error

// Spec describes the task to spawn.
type Spec struct {
	// Label is the name shown for the task, normally the command long name.
	Label string
	// SheetID is the sheet the task works on, empty for global tasks.
	SheetID string
	Work    Work
	// Timeout is optional, the work sees it as a context deadline and on Check.
	Timeout time.Duration
}

func (s *Spec) validate() error {
	if s.Work == nil {
		return fmt.Errorf("work is required: %w", model.ErrNotValid)
	}
	if s.Label == "" {
		s.Label = "task"
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative: %w", model.ErrNotValid)
	}
	return nil
}

// Snapshot is a point in time copy of a task state.
type Snapshot struct {
	ID         string
	SheetID    string
	Label      string
	Status     Status
	StatusText string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
	// Gerund, Current, Total and Percent are from the innermost progress.
	Gerund  string
	Current int
	Total   int
	Percent int
}

// Task is one in-flight execution of a unit of work.
//
// A nil task is valid and behaves as a task that is never cancelled, so the same
// command bodies can run inline and in the background.
type Task struct {
	id        string
	sheetID   string
	label     string
	startedAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}

	mu         sync.Mutex
	status     Status
	statusText string
	err        error
	finishedAt time.Time
	progresses []*progress.Progress
}

func newTask(parent context.Context, id string, spec Spec, now time.Time) *Task {
	ctx := parent
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	return &Task{
		id:        id,
		sheetID:   spec.SheetID,
		label:     spec.Label,
		startedAt: now,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		status:    StatusPending,
	}
}

// NewStandalone returns a running task that is not tracked by any runner. It is
// used to run work inline with the same cancellation and timeout semantics.
// The returned func must be called once the work finishes.
func NewStandalone(ctx context.Context, spec Spec) (*Task, func(err error)) {
	if spec.Label == "" {
		spec.Label = "task"
	}
	t := newTask(ctx, "", spec, time.Now())
	t.status = StatusRunning
	return t, func(err error) {
		if t.finish(statusFor(t, err), err, time.Now()) {
			close(t.done)
		}
	}
}

// ID returns the task ID.
func (t *Task) ID() string {
	if t == nil {
		return ""
	}
	return t.id
}

// SheetID returns the ID of the sheet the task works on.
func (t *Task) SheetID() string {
	if t == nil {
		return ""
	}
	return t.sheetID
}

// Label returns the task label.
func (t *Task) Label() string {
	if t == nil {
		return ""
	}
	return t.label
}

// Context returns the task context, it is done when the task is cancelled or times out.
func (t *Task) Context() context.Context {
	if t == nil {
		return context.Background()
	}
	return t.ctx
}

// Check returns an error when the work must stop. Work calls it at safe points,
// normally once per row.
func (t *Task) Check() error {
	if t == nil {
		return nil
	}
	if t.cancelled.Load() {
		return model.ErrCancelled
	}
	switch err := t.ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", t.label, model.ErrTimeout)
	default:
		return model.ErrCancelled
	}
}

// Cancelled returns true when the task has been asked to stop.
func (t *Task) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Cancel asks the task to stop. It doesn't wait for the work to finish.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
	t.cancel()
}

// SetStatusText sets the text shown for the task while it runs.
func (t *Task) SetStatusText(s string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.statusText = s
	t.mu.Unlock()
}

// Progress starts a new progress for the task. Progresses nest, the innermost
// one not done is the one reported. Call Done on it when finished.
func (t *Task) Progress(total int, gerund string) *progress.Progress {
	if t == nil {
		return progress.New(total, gerund)
	}

	p := progress.NewWithDone(total, gerund, t.popProgress)
	t.mu.Lock()
	t.progresses = append(t.progresses, p)
	t.mu.Unlock()
	return p
}

func (t *Task) popProgress(p *progress.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := slices.Index(t.progresses, p); i >= 0 {
		t.progresses = slices.Delete(t.progresses, i, i+1)
	}
}

// Done returns a channel closed when the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns the work error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Snapshot returns the current task state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		ID:         t.id,
		SheetID:    t.sheetID,
		Label:      t.label,
		Status:     t.status,
		StatusText: t.statusText,
		StartedAt:  t.startedAt,
		FinishedAt: t.finishedAt,
		Err:        t.err,
		Gerund:     t.label,
		Percent:    -1,
	}
	if n := len(t.progresses); n > 0 {
		p := t.progresses[n-1]
		s.Gerund = p.Gerund()
		s.Current = p.Current()
		s.Total = p.Total()
		s.Percent = p.Percent()
	}

	return s
}

func (t *Task) setRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusPending {
		t.status = StatusRunning
	}
}

// finish moves the task to a terminal state, it returns false if it already was.
// The caller closes the done channel once everything about the task has been published.
func (t *Task) finish(st Status, err error, now time.Time) bool {
	t.mu.Lock()
	if t.status.Terminal() {
		t.mu.Unlock()
		return false
	}
	t.status = st
	t.err = err
	t.finishedAt = now
	t.progresses = nil
	t.mu.Unlock()

	t.cancel()
	return true
}

func (t *Task) terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status.Terminal()
}

func statusFor(t *Task, err error) Status {
	switch {
	case err == nil:
		return StatusDone
	case errors.Is(err, model.ErrCancelled), errors.Is(err, context.Canceled) && t.Cancelled():
		return StatusCancelled
	default:
		return StatusFailed
	}
}
