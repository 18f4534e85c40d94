package renamecols

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/undo"
)

// Separator joins the cell values of several rows on a column name.
const Separator = " "

// ServiceConfig is the configuration for the rename columns service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.renamecols.Service"})

	return nil
}

// Service names columns after the values they hold on some rows.
type Service struct {
	logger log.Logger
}

// NewService creates a new rename columns service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request represents the rename columns request parameters.
type Request struct {
	Sheet   *model.Sheet
	Rows    []*model.Row
	Columns []model.Column
	// Overwrite renames the columns that already have a name, otherwise only the
	// unnamed ones are renamed.
	Overwrite bool
}

func (r Request) validate() error {
	if r.Sheet == nil {
		return fmt.Errorf("sheet is required: %w", model.ErrNotValid)
	}
	if len(r.Rows) == 0 {
		return fmt.Errorf("at least one row is required: %w", model.ErrNotValid)
	}
	return nil
}

// Result is the result of renaming columns.
type Result struct {
	// Renamed is the number of renamed columns.
	Renamed int
	// Undo restores the old names of the renamed columns.
	Undo undo.Func
}

type rename struct {
	key     int
	oldName string
}

// Run renames the columns.
func (s *Service) Run(_ context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	var renamed []rename
	for _, c := range req.Columns {
		if c.Name != "" && !req.Overwrite {
			continue
		}

		vals := make([]string, 0, len(req.Rows))
		for _, r := range req.Rows {
			vals = append(vals, displayValue(req.Sheet.Value(r, c.Key)))
		}

		old, err := req.Sheet.RenameColumn(c.Key, strings.Join(vals, Separator))
		if err != nil {
			return nil, fmt.Errorf("could not rename column %q: %w", c.Name, err)
		}
		renamed = append(renamed, rename{key: c.Key, oldName: old})
	}
	s.logger.Debugf("renamed %d columns on %s", len(renamed), req.Sheet.Name())

	return &Result{
		Renamed: len(renamed),
		Undo: func(context.Context) error {
			for _, r := range renamed {
				if _, err := req.Sheet.RenameColumn(r.key, r.oldName); err != nil {
					return fmt.Errorf("could not restore column name %q: %w", r.oldName, err)
				}
			}
			return nil
		},
	}, nil
}

func displayValue(v any) string {
	if model.IsNull(v) {
		return ""
	}
	return fmt.Sprint(v)
}
