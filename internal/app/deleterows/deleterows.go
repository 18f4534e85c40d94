package deleterows

import (
	"context"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/task"
	"github.com/slok/vgrid/internal/undo"
)

// ServiceConfig is the configuration for the delete rows service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.deleterows.Service"})

	return nil
}

// Service deletes rows from a sheet.
type Service struct {
	logger log.Logger
}

// NewService creates a new delete rows service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the delete rows request parameters.
type Request struct {
	Task  *task.Task
	Sheet *model.Sheet
	Rows  []*model.Row
}

// Result is the result of deleting rows.
type Result struct {
	Deleted int
	// Undo puts back the previous rows, cursor and selection.
	Undo undo.Func
}

// Run deletes the rows. The cursor stays on the first row at or after it that
// is not deleted. The new row collection is built aside and swapped in at once.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Sheet == nil {
		return nil, fmt.Errorf("invalid request: sheet is required: %w", model.ErrNotValid)
	}

	del := make(map[*model.Row]struct{}, len(req.Rows))
	for _, r := range req.Rows {
		del[r] = struct{}{}
	}
	deleted := func(r *model.Row) bool {
		_, ok := del[r]
		return ok
	}

	oldRows := req.Sheet.Rows()
	crow, ccol := req.Sheet.Cursor()

	var cursorRow *model.Row
	for i := crow; i < len(oldRows); i++ {
		if !deleted(oldRows[i]) {
			cursorRow = oldRows[i]
			break
		}
	}

	kept := make([]*model.Row, 0, len(oldRows))
	removed := []*model.Row{}
	newCursor := -1
	err := task.Iterate(req.Task, oldRows, "deleting", func(_ int, r *model.Row) error {
		if deleted(r) {
			removed = append(removed, r)
			return nil
		}
		kept = append(kept, r)
		if r == cursorRow {
			newCursor = len(kept) - 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(removed) == 0 {
		return &Result{}, nil
	}

	unselected := req.Sheet.Unselect(removed...)
	req.Sheet.SetRows(kept)
	if newCursor < 0 {
		newCursor = len(kept) - 1
	}
	req.Sheet.SetCursor(newCursor, ccol)
	s.logger.Debugf("deleted %d rows on %s", len(removed), req.Sheet.Name())

	return &Result{
		Deleted: len(removed),
		Undo: func(context.Context) error {
			req.Sheet.SetRows(oldRows)
			req.Sheet.Select(unselected...)
			req.Sheet.SetCursor(crow, ccol)
			return nil
		},
	}, nil
}
