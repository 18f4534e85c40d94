package selectrows

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// ServiceConfig is the configuration for the select rows service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.selectrows.Service"})

	return nil
}

// Service changes the row selection of a sheet.
type Service struct {
	logger log.Logger
}

// NewService creates a new select rows service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the select rows request parameters.
type Request struct {
	Task  *task.Task
	Sheet *model.Sheet
	Rows  []*model.Row
	// Unselect removes the rows from the selection instead of adding them.
	Unselect bool
}

// Result is the result of a selection change.
type Result struct {
	// Changed are the rows whose selection changed.
	Changed []*model.Row
	Undo    undo.Func
}

// Run selects or unselects the rows.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Sheet == nil {
		return nil, fmt.Errorf("invalid request: sheet is required: %w", model.ErrNotValid)
	}

	gerund := "selecting"
	if req.Unselect {
		gerund = "unselecting"
	}

	rows := make([]*model.Row, 0, len(req.Rows))
	err := task.Iterate(req.Task, req.Rows, gerund, func(_ int, r *model.Row) error {
		if req.Sheet.IsSelected(r) == req.Unselect {
			rows = append(rows, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	apply, revert := req.Sheet.Select, req.Sheet.Unselect
	if req.Unselect {
		apply, revert = revert, apply
	}
	changed := apply(rows...)
	s.logger.Debugf("%s %d rows on %s", gerund, len(changed), req.Sheet.Name())

	return &Result{
		Changed: changed,
		Undo: func(context.Context) error {
			revert(changed...)
			return nil
		},
	}, nil
}
