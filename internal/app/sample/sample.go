package sample

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/task"
)

// ServiceConfig is the configuration for the sample service.
type ServiceConfig struct {
	// Rand is the source of randomness, a random seeded one when missing.
	Rand   *rand.Rand
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.sample.Service"})

	return nil
}

// Service samples random rows of a sheet into a new sheet.
type Service struct {
	logger log.Logger

	// rand.Rand is not safe for concurrent use.
	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a new sample service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		rand:   cfg.Rand,
		logger: cfg.Logger,
	}, nil
}

// Request represents the sample request parameters.
type Request struct {
	Task  *task.Task
	Sheet *model.Sheet
	N     int
}

// Run returns a new sheet named after the source one with N of its rows picked
// at random, in their original order. The rows are shared, not copied.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sheet, error) {
	if req.Sheet == nil {
		return nil, fmt.Errorf("invalid request: sheet is required: %w", model.ErrNotValid)
	}
	if req.N < 0 {
		return nil, fmt.Errorf("invalid request: number of rows can't be negative: %w", model.ErrNotValid)
	}

	rows := req.Sheet.Rows()
	n := min(req.N, len(rows))

	s.mu.Lock()
	idxs := s.rand.Perm(len(rows))[:n]
	s.mu.Unlock()
	slices.Sort(idxs)

	picked := make([]*model.Row, 0, n)
	err := task.Iterate(req.Task, idxs, "sampling", func(_ int, i int) error {
		picked = append(picked, rows[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	sample := model.NewSheetFromRows(req.Sheet.Name()+"_sample", req.Sheet.Columns(), picked)
	sample.SetRowType(req.Sheet.RowType())
	s.logger.Debugf("sampled %d rows from %s", n, req.Sheet.Name())

	return sample, nil
}
