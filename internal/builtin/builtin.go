// Package builtin has the commands every session has available.
package builtin

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/slok/vgrid/internal/app/addcols"
	"github.com/slok/vgrid/internal/app/addrows"
	"github.com/slok/vgrid/internal/app/deleterows"
	"github.com/slok/vgrid/internal/app/fill"
	"github.com/slok/vgrid/internal/app/opensheet"
	"github.com/slok/vgrid/internal/app/renamecols"
	"github.com/slok/vgrid/internal/app/sample"
	"github.com/slok/vgrid/internal/app/savesheet"
	"github.com/slok/vgrid/internal/app/selectrows"
	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/storage"
)

// Config is the configuration of the builtin commands.
type Config struct {
	// Repository is the sheet store used to save and open sheets.
	Repository storage.Repository
	// FileLoader loads the sheets opened by path, optional.
	FileLoader opensheet.SheetLoader
	// IsFile decides if an open source is a path, required with FileLoader.
	IsFile func(source string) bool
	Rand   *rand.Rand
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.FileLoader != nil && c.IsFile == nil {
		return fmt.Errorf("is file check is required with a file loader")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

type services struct {
	fill       *fill.Service
	addRows    *addrows.Service
	deleteRows *deleterows.Service
	selectRows *selectrows.Service
	addCols    *addcols.Service
	renameCols *renamecols.Service
	sample     *sample.Service
	save       *savesheet.Service
	open       *opensheet.Service
}

func newServices(cfg Config) (*services, error) {
	var (
		s   services
		err error
	)

	if s.fill, err = fill.NewService(fill.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create fill service: %w", err)
	}
	if s.addRows, err = addrows.NewService(addrows.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create add rows service: %w", err)
	}
	if s.deleteRows, err = deleterows.NewService(deleterows.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create delete rows service: %w", err)
	}
	if s.selectRows, err = selectrows.NewService(selectrows.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create select rows service: %w", err)
	}
	if s.addCols, err = addcols.NewService(addcols.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create add columns service: %w", err)
	}
	if s.renameCols, err = renamecols.NewService(renamecols.ServiceConfig{Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create rename columns service: %w", err)
	}
	if s.sample, err = sample.NewService(sample.ServiceConfig{Rand: cfg.Rand, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create sample service: %w", err)
	}
	if s.save, err = savesheet.NewService(savesheet.ServiceConfig{Repository: cfg.Repository, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create save sheet service: %w", err)
	}
	s.open, err = opensheet.NewService(opensheet.ServiceConfig{
		Repository: cfg.Repository,
		FileLoader: cfg.FileLoader,
		IsFile:     cfg.IsFile,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create open sheet service: %w", err)
	}

	return &s, nil
}

// Register registers all the builtin commands on the registry.
func Register(reg *command.Registry, cfg Config) error {
	if err := cfg.defaults(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	svcs, err := newServices(cfg)
	if err != nil {
		return err
	}

	var cmds []command.Command
	cmds = append(cmds, cursorCommands()...)
	cmds = append(cmds, rowCommands(svcs)...)
	cmds = append(cmds, columnCommands(svcs)...)
	cmds = append(cmds, sheetCommands(svcs)...)
	cmds = append(cmds, sessionCommands()...)

	if err := reg.Register(cmds...); err != nil {
		return fmt.Errorf("could not register builtin commands: %w", err)
	}

	return nil
}

// countArg returns the first argument as a positive number.
func countArg(c *command.Context, args []string, what string) (int, error) {
	if len(args) == 0 || args[0] == "" {
		return 0, c.Status.Fail(c.Command.Name, what+" required")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, c.Status.Fail(c.Command.Name, fmt.Sprintf("%q is not a valid number of %s", args[0], what))
	}

	return n, nil
}

// textArg returns the first argument.
func textArg(c *command.Context, args []string, what string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", c.Status.Fail(c.Command.Name, what+" required")
	}
	return args[0], nil
}
