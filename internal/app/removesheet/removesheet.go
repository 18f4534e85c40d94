package removesheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage"
)

// ServiceConfig is the configuration for the remove sheet service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service removes a stored sheet.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new remove sheet service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove sheet request parameters.
type Request struct {
	Name string
}

// Run removes a stored sheet by name and returns what was removed.
func (s *Service) Run(ctx context.Context, req Request) (*model.SheetSummary, error) {
	s.logger.Debugf("removing sheet: %s", req.Name)

	d, err := s.repo.GetSheetByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sheet not found: %s: %w", req.Name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sheet: %w", err)
	}

	if err := s.repo.DeleteSheet(ctx, d.Name); err != nil {
		return nil, fmt.Errorf("could not delete sheet: %w", err)
	}

	s.logger.Infof("removed sheet: %s (ID: %s)", d.Name, d.ID)
	return &model.SheetSummary{
		ID:       d.ID,
		Name:     d.Name,
		NRows:    len(d.Rows),
		NColumns: len(d.Columns),
		SavedAt:  d.SavedAt,
	}, nil
}
