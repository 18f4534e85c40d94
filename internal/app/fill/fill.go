package fill

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// ServiceConfig is the configuration for the fill service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.fill.Service"})

	return nil
}

// Service fills null cells with the previous non null value of the column.
type Service struct {
	logger log.Logger
}

// NewService creates a new fill service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the fill request parameters.
type Request struct {
	// Task is where progress and cancellation are tracked, can be nil.
	Task      *task.Task
	Sheet     *model.Sheet
	ColumnKey int
	// Rows are the rows that can be filled, all the sheet rows when empty.
	Rows []*model.Row
}

func (r Request) validate() error {
	if r.Sheet == nil {
		return fmt.Errorf("sheet is required: %w", model.ErrNotValid)
	}
	if _, ok := r.Sheet.Column(r.ColumnKey); !ok {
		return fmt.Errorf("column %d: %w", r.ColumnKey, model.ErrNotFound)
	}
	return nil
}

// Result is the result of a fill.
type Result struct {
	Filled int
	// Undo restores the filled cells to their previous value.
	Undo undo.Func
}

type change struct {
	row *model.Row
	old any
	new any
}

// Run walks all the sheet rows carrying the last value seen. The null cells of
// the rows to fill get that value, any other cell (a null one included) becomes
// the new carried value.
//
// Nothing is written until the walk finishes, a cancelled fill leaves the sheet untouched.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	toFill := map[*model.Row]struct{}{}
	for _, r := range req.Rows {
		toFill[r] = struct{}{}
	}
	fillable := func(r *model.Row) bool {
		if len(toFill) == 0 {
			return true
		}
		_, ok := toFill[r]
		return ok
	}

	var (
		lastval any
		changes []change
	)
	err := task.Iterate(req.Task, req.Sheet.Rows(), "filling", func(_ int, r *model.Row) error {
		v := r.Get(req.ColumnKey)
		if model.IsNull(v) && fillable(r) {
			if !model.IsNull(lastval) {
				changes = append(changes, change{row: r, old: v, new: lastval})
			}
			return nil
		}
		lastval = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		req.Sheet.SetValue(c.row, req.ColumnKey, c.new)
	}
	s.logger.Debugf("filled %d values on %s", len(changes), req.Sheet.Name())

	return &Result{
		Filled: len(changes),
		Undo: func(context.Context) error {
			for _, c := range changes {
				req.Sheet.SetValue(c.row, req.ColumnKey, c.old)
			}
			return nil
		},
	}, nil
}
