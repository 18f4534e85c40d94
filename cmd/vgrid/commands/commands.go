package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/vgrid/internal/builtin"
	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/conventions"
	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/printer"
	"github.com/slok/vgrid/internal/session"
	"github.com/slok/vgrid/internal/storage"
	storageio "github.com/slok/vgrid/internal/storage/io"
	"github.com/slok/vgrid/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DataDir    string
	ConfigPath string
	LogFile    string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Directory with the sheet store and the configuration.").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("config", "Path to the YAML configuration file (defaults to config.yaml on the data dir).").StringVar(&c.ConfigPath)
	app.Flag("log-file", "Log file for interactive sessions (defaults to vgrid.log on the data dir).").StringVar(&c.LogFile)

	return c
}

// LogFilePath returns the file the interactive sessions log to.
func (c RootCommand) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return conventions.LogPath(c.DataDir)
}

func (c RootCommand) newRepository(ctx context.Context) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: conventions.DBPath(c.DataDir),
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

// loadOptions loads the options from the configuration file, a missing default
// configuration file means default options.
func (c RootCommand) loadOptions(ctx context.Context) (model.Options, error) {
	path, explicit := c.ConfigPath, true
	if path == "" {
		path, explicit = conventions.ConfigPath(c.DataDir), false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Options{}, fmt.Errorf("invalid config path: %w", err)
	}

	loader := storageio.NewConfigYAMLRepository(os.DirFS(filepath.Dir(abs)))
	opts, err := loader.GetOptions(ctx, filepath.Base(abs))
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			c.Logger.Debugf("No configuration file, using defaults")
			return model.DefaultOptions(), nil
		}
		return model.Options{}, fmt.Errorf("could not load configuration: %w", err)
	}

	return opts, nil
}

// newSession returns a session with the builtin commands, storing sheets on repo.
func (c RootCommand) newSession(ctx context.Context, repo storage.Repository) (*session.Session, error) {
	opts, err := c.loadOptions(ctx)
	if err != nil {
		return nil, err
	}
	if c.Debug {
		opts.Debug = true
	}

	reg := command.NewRegistry()
	err = builtin.Register(reg, builtin.Config{
		Repository: repo,
		FileLoader: storageio.FileSheetLoader{},
		IsFile:     storageio.IsCSVPath,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not register commands: %w", err)
	}

	sess, err := session.New(session.Config{
		Registry: reg,
		Options:  opts,
		Logger:   c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	return sess, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}
