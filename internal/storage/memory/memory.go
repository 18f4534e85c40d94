package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
	Now    func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})

	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	sheets map[string]model.SheetData
	mu     sync.RWMutex
	logger log.Logger
	now    func() time.Time
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		sheets: make(map[string]model.SheetData),
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// SaveSheet stores a sheet, replacing the one with the same name.
func (r *Repository) SaveSheet(ctx context.Context, d model.SheetData) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid sheet: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The stored identity is kept when a sheet is replaced.
	if existing, ok := r.sheets[d.Name]; ok {
		d.ID = existing.ID
	}
	d.SavedAt = r.now().UTC()
	r.sheets[d.Name] = copyData(d)
	r.logger.Debugf("Saved sheet in repository: %s", d.Name)

	return nil
}

// GetSheetByName retrieves a sheet by name.
func (r *Repository) GetSheetByName(ctx context.Context, name string) (*model.SheetData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet with name %s: %w", name, model.ErrNotFound)
	}

	// Return a copy
	dCopy := copyData(d)
	return &dCopy, nil
}

// ListSheets returns all the sheets sorted by name.
func (r *Repository) ListSheets(ctx context.Context) ([]model.SheetSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sheets := make([]model.SheetSummary, 0, len(r.sheets))
	for _, d := range r.sheets {
		sheets = append(sheets, model.SheetSummary{
			ID:       d.ID,
			Name:     d.Name,
			NRows:    len(d.Rows),
			NColumns: len(d.Columns),
			SavedAt:  d.SavedAt,
		})
	}
	slices.SortFunc(sheets, func(a, b model.SheetSummary) int { return strings.Compare(a.Name, b.Name) })

	return sheets, nil
}

// DeleteSheet deletes a sheet by name.
func (r *Repository) DeleteSheet(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sheets[name]; !ok {
		return fmt.Errorf("sheet with name %s: %w", name, model.ErrNotFound)
	}

	delete(r.sheets, name)
	r.logger.Debugf("Deleted sheet from repository: %s", name)

	return nil
}

func copyData(d model.SheetData) model.SheetData {
	d.Columns = slices.Clone(d.Columns)
	rows := make([][]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		rows = append(rows, slices.Clone(r))
	}
	d.Rows = rows
	return d
}
