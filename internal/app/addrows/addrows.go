package addrows

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// ServiceConfig is the configuration for the add rows service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.addrows.Service"})

	return nil
}

// Service inserts blank rows on a sheet.
type Service struct {
	logger log.Logger
}

// NewService creates a new add rows service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the add rows request parameters.
type Request struct {
	Task  *task.Task
	Sheet *model.Sheet
	// N is the number of rows to add.
	N int
	// Index is where the first new row is inserted.
	Index int
}

func (r Request) validate() error {
	if r.Sheet == nil {
		return fmt.Errorf("sheet is required: %w", model.ErrNotValid)
	}
	if r.N <= 0 {
		return fmt.Errorf("number of rows must be positive: %w", model.ErrNotValid)
	}
	return nil
}

// Result is the result of adding rows.
type Result struct {
	Rows []*model.Row
	// Undo removes the added rows and puts the cursor back where it was.
	Undo undo.Func
}

// Run creates the rows and inserts all of them at once.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	crow, ccol := req.Sheet.Cursor()

	rows := make([]*model.Row, req.N)
	err := task.Iterate(req.Task, rows, "adding", func(i int, _ *model.Row) error {
		rows[i] = model.NewRow()
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Sheet.InsertRows(req.Index, rows...)
	s.logger.Debugf("added %d rows at %d on %s", req.N, req.Index, req.Sheet.Name())

	return &Result{
		Rows: rows,
		Undo: func(context.Context) error {
			req.Sheet.RemoveRows(rows...)
			req.Sheet.SetCursor(crow, ccol)
			return nil
		},
	}, nil
}
