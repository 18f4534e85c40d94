package opensheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage"
)

// SheetLoader loads sheet data from a file.
type SheetLoader interface {
	LoadSheet(ctx context.Context, path string) (*model.SheetData, error)
}

// ServiceConfig is the configuration for the open sheet service.
type ServiceConfig struct {
	Repository storage.Repository
	// FileLoader is optional, without it only stored sheets can be opened.
	FileLoader SheetLoader
	// IsFile decides if a source is a file path or a stored sheet name.
	IsFile func(source string) bool
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.IsFile == nil {
		c.IsFile = func(string) bool { return false }
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.opensheet.Service"})

	return nil
}

// Service opens sheets from the sheet store or from files.
type Service struct {
	repo   storage.Repository
	loader SheetLoader
	isFile func(string) bool
	logger log.Logger
}

// NewService creates a new open sheet service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		loader: cfg.FileLoader,
		isFile: cfg.IsFile,
		logger: cfg.Logger,
	}, nil
}

// Request represents the open sheet request parameters.
type Request struct {
	// Source is a stored sheet name or a file path.
	Source string
}

// Run loads the source as a new sheet.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sheet, error) {
	if req.Source == "" {
		return nil, fmt.Errorf("invalid request: source is required: %w", model.ErrNotValid)
	}

	var (
		d   *model.SheetData
		err error
	)
	if s.loader != nil && s.isFile(req.Source) {
		s.logger.Debugf("loading sheet from file %s", req.Source)
		d, err = s.loader.LoadSheet(ctx, req.Source)
	} else {
		s.logger.Debugf("loading stored sheet %s", req.Source)
		d, err = s.repo.GetSheetByName(ctx, req.Source)
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sheet not found: %s: %w", req.Source, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not load sheet: %w", err)
	}

	sh, err := model.NewSheetFromData(*d)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet data: %w", err)
	}

	return sh, nil
}
