package savesheet

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage"
	"github.com/slok/vgrid/internal/task"
)

const defaultConcurrency = 4

// ServiceConfig is the configuration for the save sheet service.
type ServiceConfig struct {
	Repository storage.Repository
	// Concurrency is the maximum number of sheets saved at the same time.
	Concurrency int
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.savesheet.Service"})

	return nil
}

// Service saves sheets on the sheet store.
type Service struct {
	repo        storage.Repository
	concurrency int
	logger      log.Logger
}

// NewService creates a new save sheet service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:        cfg.Repository,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}, nil
}

// Request represents the save sheet request parameters.
type Request struct {
	Task   *task.Task
	Sheets []*model.Sheet
	// Name saves the sheet with a different name, only valid with a single sheet.
	Name string
}

func (r Request) validate() error {
	if len(r.Sheets) == 0 {
		return fmt.Errorf("at least one sheet is required: %w", model.ErrNotValid)
	}
	if r.Name != "" && len(r.Sheets) > 1 {
		return fmt.Errorf("a name can only be used when saving a single sheet: %w", model.ErrNotValid)
	}
	return nil
}

// Run saves the sheets concurrently and returns the names they were saved with.
// The first failure stops the sheets that were not started yet.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	p := req.Task.Progress(len(req.Sheets), "saving")
	defer p.Done()

	names := make([]string, len(req.Sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sh := range req.Sheets {
		g.Go(func() error {
			if err := req.Task.Check(); err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			d := sh.Data()
			if req.Name != "" {
				d.Name = req.Name
			}
			if err := s.repo.SaveSheet(gctx, d); err != nil {
				return fmt.Errorf("could not save sheet %q: %w", d.Name, err)
			}
			sh.SetModified(false)
			names[i] = d.Name
			p.Advance()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debugf("saved %d sheets", len(names))

	return names, nil
}
