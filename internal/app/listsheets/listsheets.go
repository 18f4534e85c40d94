package listsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage"
)

// ServiceConfig is the configuration for the list sheets service.
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

// Service lists the stored sheets with optional filtering.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list sheets service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list sheets request parameters.
type Request struct {
	// NamePrefix is an optional filter to only show sheets whose name starts with it.
	NamePrefix string
}

// Run lists all the stored sheets, optionally filtered by name.
func (s *Service) Run(ctx context.Context, req Request) ([]model.SheetSummary, error) {
	s.logger.Debugf("listing sheets with prefix: %q", req.NamePrefix)

	sheets, err := s.repo.ListSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sheets: %w", err)
	}

	if req.NamePrefix != "" {
		filtered := make([]model.SheetSummary, 0, len(sheets))
		for _, sh := range sheets {
			if strings.HasPrefix(sh.Name, req.NamePrefix) {
				filtered = append(filtered, sh)
			}
		}
		sheets = filtered
	}

	s.logger.Debugf("found %d sheets", len(sheets))
	return sheets, nil
}
