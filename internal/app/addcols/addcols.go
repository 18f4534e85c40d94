package addcols

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/undo"
)

// ServiceConfig is the configuration for the add columns service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.addcols.Service"})

	return nil
}

// Service inserts blank columns on a sheet.
type Service struct {
	logger log.Logger
}

// NewService creates a new add columns service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the add columns request parameters.
type Request struct {
	Sheet *model.Sheet
	// Index is where the first column is inserted.
	Index int
	N     int
	// Name is the name of the new columns, numbered when adding more than one.
	Name string
}

func (r Request) validate() error {
	if r.Sheet == nil {
		return fmt.Errorf("sheet is required: %w", model.ErrNotValid)
	}
	if r.N <= 0 {
		return fmt.Errorf("number of columns must be positive: %w", model.ErrNotValid)
	}
	return nil
}

// Result is the result of adding columns.
type Result struct {
	Columns []model.Column
	// Undo removes the added columns.
	Undo undo.Func
}

// Run adds the columns.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	cols := make([]model.Column, 0, req.N)
	for i := range req.N {
		name := req.Name
		if req.N > 1 {
			name = fmt.Sprintf("%s%d", req.Name, i+1)
		}
		cols = append(cols, req.Sheet.AddColumn(req.Index+i, name))
	}
	s.logger.Debugf("added %d columns at %d on %s", req.N, req.Index, req.Sheet.Name())

	return &Result{
		Columns: cols,
		Undo: func(context.Context) error {
			for _, c := range cols {
				if err := req.Sheet.RemoveColumn(c.Key); err != nil {
					return fmt.Errorf("could not remove column %q: %w", c.Name, err)
				}
			}
			return nil
		},
	}, nil
}
